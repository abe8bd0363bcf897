package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of work executed on the loop
type Task func()

// Timer is a pending delayed task
type Timer interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Loop is the single logical thread UI state lives on. Every task posted to
// a Loop runs serially, never concurrently with another task of the same Loop.
type Loop interface {
	// Post queues a task to run on the loop
	Post(task Task)
	// After queues a task to run on the loop once d has elapsed
	After(d time.Duration, task Task) Timer
	// Go runs work off the loop (it may block) and posts then back onto it
	Go(work func(), then Task)
}

// ErrorHandler handles panics raised by a task.
// Returns true to keep the loop running, false to stop it.
type ErrorHandler func(err interface{}) bool

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Scheduler is the real-time Loop: a goroutine draining a task queue
type Scheduler struct {
	mu      sync.Mutex
	queue   chan Task
	running atomic.Bool
	done    chan struct{}
	pending sync.WaitGroup

	onError ErrorHandler
}

// NewScheduler creates a new scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: make(chan Task, 1024), // buffered for performance
	}
}

// SetErrorHandler sets the handler for panicking tasks
func (s *Scheduler) SetErrorHandler(handler ErrorHandler) {
	s.onError = handler
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[Scheduler] Starting scheduler loop")
		}
		s.mu.Lock()
		s.done = make(chan struct{})
		s.mu.Unlock()
		go s.loop()
	} else if debugLog != nil {
		debugLog("[Scheduler] Scheduler already running")
	}
}

// Stop stops the scheduler. Tasks still queued are dropped.
func (s *Scheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		// wake the loop so it notices
		select {
		case s.queue <- nil:
		default:
		}
	}
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Done is closed when the loop goroutine exits
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Post queues a task. Posting to a stopped scheduler is a no-op.
func (s *Scheduler) Post(task Task) {
	if task == nil || !s.running.Load() {
		return
	}
	s.queue <- task
}

// After runs task on the loop after d
func (s *Scheduler) After(d time.Duration, task Task) Timer {
	return time.AfterFunc(d, func() { s.Post(task) })
}

// Go runs work on its own goroutine and posts then when work returns
func (s *Scheduler) Go(work func(), then Task) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		work()
		s.Post(then)
	}()
}

// Wait blocks until all work started with Go has returned
func (s *Scheduler) Wait() {
	s.pending.Wait()
}

// loop is the main scheduler event loop
func (s *Scheduler) loop() {
	defer close(s.done)
	if debugLog != nil {
		debugLog("[Scheduler] Loop started")
	}
	for s.running.Load() {
		task := <-s.queue
		if task == nil {
			continue
		}

		// Collect everything already queued to process as one batch
		batch := []Task{task}
	drainLoop:
		for {
			select {
			case t := <-s.queue:
				if t != nil {
					batch = append(batch, t)
				}
			default:
				break drainLoop
			}
		}

		if debugLog != nil && len(batch) > 1 {
			debugLog("[Scheduler] Processing batch of", len(batch), "tasks")
		}
		for _, t := range batch {
			if !s.running.Load() {
				break
			}
			s.run(t)
		}
	}
	if debugLog != nil {
		debugLog("[Scheduler] Loop ended")
	}
}

// run executes a single task with panic recovery
func (s *Scheduler) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			errorMsg := fmt.Sprintf("task panic: %v\n%s", r, debug.Stack())
			shouldContinue := false
			if s.onError != nil {
				shouldContinue = s.onError(errorMsg)
			}
			if !shouldContinue {
				s.running.Store(false)
			}
		}
	}()
	task()
}
