package view

import (
	"sync"

	"github.com/google/uuid"

	"github.com/zappabad/optionsim/internal/broker"
)

// BrokerView keeps the most recent exercise requests.
type BrokerView struct {
	mu       sync.RWMutex
	requests []broker.Request
	capacity int
}

// NewBrokerView creates a new BrokerView with the given capacity.
func NewBrokerView(capacity int) *BrokerView {
	if capacity <= 0 {
		capacity = 100
	}
	return &BrokerView{
		requests: make([]broker.Request, 0, capacity),
		capacity: capacity,
	}
}

// AddRequest adds a request, evicting the oldest when full.
func (v *BrokerView) AddRequest(req broker.Request) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.requests) >= v.capacity {
		v.requests = v.requests[1:]
	}
	v.requests = append(v.requests, req)
}

// Get returns the request with id.
func (v *BrokerView) Get(id uuid.UUID) (broker.Request, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, req := range v.requests {
		if req.ID == id {
			return req, true
		}
	}
	return broker.Request{}, false
}

// MarkProcessed records the decision on an unprocessed request. It returns
// the request as it was before and whether it was found unprocessed.
func (v *BrokerView) MarkProcessed(id uuid.UUID, accepted bool) (broker.Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.requests {
		req := &v.requests[i]
		if req.ID != id {
			continue
		}
		if req.Processed {
			return *req, false
		}
		prev := *req
		req.Processed = true
		req.Accepted = accepted
		return prev, true
	}
	return broker.Request{}, false
}

// Requests returns a copy of all requests.
func (v *BrokerView) Requests() []broker.Request {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]broker.Request, len(v.requests))
	copy(out, v.requests)
	return out
}

// PendingRequests returns a copy of unprocessed requests.
func (v *BrokerView) PendingRequests() []broker.Request {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []broker.Request
	for _, req := range v.requests {
		if !req.Processed {
			out = append(out, req)
		}
	}
	return out
}

// Reset drops every request.
func (v *BrokerView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.requests = v.requests[:0]
}
