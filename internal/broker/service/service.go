package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zappabad/optionsim/internal/broker"
	brokerview "github.com/zappabad/optionsim/internal/broker/view"
	"github.com/zappabad/optionsim/internal/portfolio"
)

var (
	ErrUnknownRequest   = errors.New("unknown exercise request")
	ErrRequestProcessed = errors.New("exercise request already decided")
)

// BrokerService files exercise quotes under an ID so a remote player can
// decide on them in a separate call.
type BrokerService struct {
	cfg  Config
	view *brokerview.BrokerView
}

// NewBrokerService creates a new BrokerService.
func NewBrokerService(cfg Config) *BrokerService {
	if cfg.RequestCapacity <= 0 {
		cfg.RequestCapacity = DefaultConfig().RequestCapacity
	}

	return &BrokerService{
		cfg:  cfg,
		view: brokerview.NewBrokerView(cfg.RequestCapacity),
	}
}

// Submit files q as a pending request.
func (s *BrokerService) Submit(q portfolio.ExerciseQuote) broker.Request {
	req := broker.Request{
		ID:    uuid.New(),
		Time:  time.Now().UnixNano(),
		Quote: q,
	}
	s.view.AddRequest(req)
	return req
}

// Decide marks a pending request with the player's decision and returns it.
// Each request can be decided once.
func (s *BrokerService) Decide(id uuid.UUID, accepted bool) (broker.Request, error) {
	req, ok := s.view.MarkProcessed(id, accepted)
	if !ok {
		if _, found := s.view.Get(id); found {
			return broker.Request{}, ErrRequestProcessed
		}
		return broker.Request{}, ErrUnknownRequest
	}
	req.Processed = true
	req.Accepted = accepted
	return req, nil
}

// Request returns the request with id.
func (s *BrokerService) Request(id uuid.UUID) (broker.Request, error) {
	req, ok := s.view.Get(id)
	if !ok {
		return broker.Request{}, ErrUnknownRequest
	}
	return req, nil
}

// Requests returns the current broker requests.
func (s *BrokerService) Requests() []broker.Request {
	return s.view.Requests()
}

// PendingRequests returns unprocessed requests.
func (s *BrokerService) PendingRequests() []broker.Request {
	return s.view.PendingRequests()
}

// Reset drops every request.
func (s *BrokerService) Reset() {
	s.view.Reset()
}
