package schedule

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct {
	wg conc.WaitGroup

	mu      sync.Mutex
	handles map[*tickerHandle]struct{}
	closed  bool
}

// NewTickerScheduler creates a wall-clock scheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{handles: make(map[*tickerHandle]struct{})}
}

type tickerHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}

// Every implements Scheduler. After Close it returns an already cancelled handle.
func (s *TickerScheduler) Every(period time.Duration, task Task) Handle {
	h := &tickerHandle{stop: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		h.Cancel()
		return h
	}
	s.handles[h] = struct{}{}

	s.wg.Go(func() {
		defer s.forget(h)

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				// Cancel may race with a tick that is already due.
				select {
				case <-h.stop:
					return
				default:
				}
				task()
			}
		}
	})
	return h
}

func (s *TickerScheduler) forget(h *tickerHandle) {
	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
}

// Now implements Scheduler.
func (s *TickerScheduler) Now() time.Time {
	return time.Now()
}

// Close implements Scheduler. It must not be called from inside a task.
func (s *TickerScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for h := range s.handles {
		h.Cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
