package scheduler

import (
	"sort"
	"time"
)

// Manual is a deterministic Loop driven by a virtual clock. Nothing runs
// until the owner calls RunPending or Advance, which makes it the loop of
// choice for tests and for headless replays.
type Manual struct {
	now    time.Duration
	queue  []Task
	timers []*manualTimer
	seq    uint64
}

type manualTimer struct {
	due     time.Duration
	seq     uint64
	task    Task
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual creates a manual loop with its clock at zero
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation
func (m *Manual) Now() time.Duration {
	return m.now
}

// Post queues a task for the next RunPending
func (m *Manual) Post(task Task) {
	if task != nil {
		m.queue = append(m.queue, task)
	}
}

// After registers task to run once the clock has advanced by d
func (m *Manual) After(d time.Duration, task Task) Timer {
	m.seq++
	t := &manualTimer{due: m.now + d, seq: m.seq, task: task}
	m.timers = append(m.timers, t)
	return t
}

// Go runs work inline and queues then
func (m *Manual) Go(work func(), then Task) {
	work()
	m.Post(then)
}

// RunPending runs queued tasks, including tasks they queue, until the queue is empty
func (m *Manual) RunPending() {
	for len(m.queue) > 0 {
		task := m.queue[0]
		m.queue = m.queue[1:]
		task()
	}
}

// Advance moves the clock forward by d, firing due timers in order and
// draining the queue after each one
func (m *Manual) Advance(d time.Duration) {
	m.RunPending()
	end := m.now + d
	for {
		next := m.nextDue(end)
		if next == nil {
			break
		}
		m.now = next.due
		next.fired = true
		m.Post(next.task)
		m.RunPending()
	}
	m.now = end
	m.compact()
}

// Settle keeps advancing to the next timer until none is left or limit
// timers have fired. It returns the number of timers fired.
func (m *Manual) Settle(limit int) int {
	m.RunPending()
	fired := 0
	for fired < limit {
		d, ok := m.NextTimer()
		if !ok {
			break
		}
		m.Advance(d)
		fired++
	}
	return fired
}

// NextTimer returns the delay until the earliest live timer fires
func (m *Manual) NextTimer() (time.Duration, bool) {
	next := m.nextDue(-1)
	if next == nil {
		return 0, false
	}
	return next.due - m.now, true
}

// PendingTimers counts timers that have neither fired nor been stopped
func (m *Manual) PendingTimers() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// PendingTasks counts queued tasks
func (m *Manual) PendingTasks() int {
	return len(m.queue)
}

// nextDue returns the earliest live timer due at or before limit (any when limit < 0)
func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	live := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if !t.stopped && !t.fired && (limit < 0 || t.due <= limit) {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].due == live[j].due {
			return live[i].seq < live[j].seq
		}
		return live[i].due < live[j].due
	})
	return live[0]
}

func (m *Manual) compact() {
	kept := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	m.timers = kept
}
