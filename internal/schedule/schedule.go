// Package schedule runs periodic tasks behind cancellable handles, on either
// the wall clock or a manually advanced virtual clock.
package schedule

import (
	"sync"
	"time"
)

// Task is a periodic callback.
type Task func()

// Handle cancels one registered task. Cancel is idempotent and does not wait
// for a running callback to return.
type Handle interface {
	Cancel()
}

// Scheduler registers periodic tasks.
type Scheduler interface {
	// Every runs task each period, first after one full period.
	Every(period time.Duration, task Task) Handle
	// Now returns the scheduler's current time.
	Now() time.Time
	// Close cancels every task and waits for running callbacks to return.
	Close()
}

// Group cancels a set of handles together.
type Group struct {
	mu      sync.Mutex
	handles []Handle
}

// Add tracks h.
func (g *Group) Add(h Handle) {
	g.mu.Lock()
	g.handles = append(g.handles, h)
	g.mu.Unlock()
}

// CancelAll cancels every tracked handle and forgets them.
func (g *Group) CancelAll() {
	g.mu.Lock()
	hs := g.handles
	g.handles = nil
	g.mu.Unlock()

	for _, h := range hs {
		h.Cancel()
	}
}

// Len returns the number of tracked handles.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}
