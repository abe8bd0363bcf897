package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/graphpanel/pkg/scheduler"
)

// taskMsg carries a loop task into the bubbletea event loop
type taskMsg struct{ task scheduler.Task }

// Sender is the part of *tea.Program the loop needs
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramLoop is a scheduler.Loop whose tasks run inside Model.Update, so
// the controller shares the terminal program's single thread. Tasks are
// delivered in the order they were posted.
type ProgramLoop struct {
	mu      sync.Mutex
	sender  Sender
	queue   []scheduler.Task
	wake    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

// NewProgramLoop returns a loop delivering to sender. Bind must be called
// before tasks are posted when sender is not known up front.
func NewProgramLoop(sender Sender) *ProgramLoop {
	l := &ProgramLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	if sender != nil {
		l.Bind(sender)
	}
	return l
}

// Bind sets the program tasks are delivered to
func (l *ProgramLoop) Bind(sender Sender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sender = sender
	if !l.started && !l.stopped {
		l.started = true
		go l.forward()
	}
}

// Stop ends delivery; queued tasks are dropped
func (l *ProgramLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}

// Post never blocks the caller: Update itself may be posting
func (l *ProgramLoop) Post(task scheduler.Task) {
	if task == nil {
		return
	}
	l.mu.Lock()
	if l.sender == nil || l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *ProgramLoop) After(d time.Duration, task scheduler.Task) scheduler.Timer {
	return time.AfterFunc(d, func() { l.Post(task) })
}

func (l *ProgramLoop) Go(work func(), then scheduler.Task) {
	go func() {
		work()
		l.Post(then)
	}()
}

// forward hands queued tasks to the program one at a time
func (l *ProgramLoop) forward() {
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if l.stopped || len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			task := l.queue[0]
			l.queue = l.queue[1:]
			sender := l.sender
			l.mu.Unlock()

			sender.Send(taskMsg{task: task})
		}
	}
}
