// Package schedule runs deferred work through cancellable task handles.
package schedule

import (
	"sync"
	"time"
)

// Task is a handle to deferred work.
type Task interface {
	// Cancel prevents the work from running. It reports whether the task was
	// still pending; cancelling a task that already ran or was cancelled is a no-op.
	Cancel() bool
}

// Scheduler defers fn by d.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// Timers schedules work on runtime timers.
type Timers struct{}

// NewTimers returns a Scheduler backed by time.AfterFunc.
func NewTimers() Timers {
	return Timers{}
}

// After implements Scheduler.
func (Timers) After(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

type timerTask struct {
	t *time.Timer
}

func (t timerTask) Cancel() bool {
	return t.t.Stop()
}

// Manual is a Scheduler driven by explicit calls to Advance.
// Tests use it to fire deferred work deterministically.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	due     time.Duration
	seq     int
	fn      func()
	pending bool
}

func (t *manualTask) Cancel() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	was := t.pending
	t.pending = false
	return was
}

// NewManual returns a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{m: m, due: m.now + d, seq: m.seq, fn: fn, pending: true}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves virtual time forward by d and runs every task that became due,
// in due order. Tasks run on the calling goroutine without the lock held, so
// they may schedule further work.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()

	for {
		t := m.nextDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

// nextDue pops the earliest pending task that is due.
func (m *Manual) nextDue() *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next *manualTask
	for _, t := range m.tasks {
		if !t.pending || t.due > m.now {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	if next != nil {
		next.pending = false
	}
	m.compact()
	return next
}

func (m *Manual) compact() {
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if t.pending {
			kept = append(kept, t)
		}
	}
	clear(m.tasks[len(kept):])
	m.tasks = kept
}

// Pending reports how many tasks are scheduled and not yet run or cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if t.pending {
			n++
		}
	}
	return n
}
