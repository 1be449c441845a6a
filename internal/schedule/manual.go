package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// ManualScheduler runs tasks on a virtual clock moved only by Advance.
// Tasks due at the same instant fire in registration order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	seq       int
	period    time.Duration
	next      time.Time
	fn        Task
	cancelled atomic.Bool
}

func (t *manualTask) Cancel() { t.cancelled.Store(true) }

// NewManualScheduler creates a virtual clock starting at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Every implements Scheduler.
func (s *ManualScheduler) Every(period time.Duration, task Task) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if period <= 0 {
		period = time.Nanosecond
	}
	s.seq++
	t := &manualTask{seq: s.seq, period: period, next: s.now.Add(period), fn: task}
	s.tasks = append(s.tasks, t)
	return t
}

// Now implements Scheduler.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d, firing every task that falls due on
// the way in time order. Callbacks run on the caller's goroutine without the
// scheduler's lock held, so they may register or cancel tasks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)

	for {
		t := s.nextDueLocked(target)
		if t == nil {
			break
		}
		s.now = t.next
		t.next = t.next.Add(t.period)

		s.mu.Unlock()
		t.fn()
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTask {
	live := s.tasks[:0]
	var due *manualTask
	for _, t := range s.tasks {
		if t.cancelled.Load() {
			continue
		}
		live = append(live, t)
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) || (t.next.Equal(due.next) && t.seq < due.seq) {
			due = t
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
	return due
}

// Pending returns the number of live tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if !t.cancelled.Load() {
			n++
		}
	}
	return n
}

// Close implements Scheduler.
func (s *ManualScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
}
