package view

import (
	"sync"

	"github.com/zappabad/optionsim/internal/news"
)

// DefaultCapacity is the number of items the event log keeps.
const DefaultCapacity = 5

// NewsView is the event log: a bounded ring buffer of the most recent items.
type NewsView struct {
	mu    sync.RWMutex
	buf   []news.Item
	size  int
	start int
	count int
}

// NewNewsView creates a NewsView holding at most capacity items.
func NewNewsView(capacity int) *NewsView {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &NewsView{
		buf:  make([]news.Item, capacity),
		size: capacity,
	}
}

// Apply appends the event's item, evicting the oldest when full.
func (v *NewsView) Apply(ev NewsEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.count < v.size {
		v.buf[(v.start+v.count)%v.size] = ev.Item
		v.count++
		return
	}
	v.buf[v.start] = ev.Item
	v.start = (v.start + 1) % v.size
}

// Latest returns up to n items, oldest first. The slice is a copy.
func (v *NewsView) Latest(n int) []news.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if n <= 0 || v.count == 0 {
		return nil
	}
	if n > v.count {
		n = v.count
	}

	out := make([]news.Item, n)
	first := (v.start + (v.count - n)) % v.size
	for i := 0; i < n; i++ {
		out[i] = v.buf[(first+i)%v.size]
	}
	return out
}

// Recent returns every retained item, newest first.
func (v *NewsView) Recent() []news.Item {
	items := v.Latest(v.Capacity())
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Count returns the number of retained items.
func (v *NewsView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.count
}

// Capacity returns the maximum number of retained items.
func (v *NewsView) Capacity() int {
	return v.size
}

// Reset empties the log.
func (v *NewsView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear(v.buf)
	v.start = 0
	v.count = 0
}
