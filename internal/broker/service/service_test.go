package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/zappabad/optionsim/internal/portfolio"
)

func TestSubmitAndDecide(t *testing.T) {
	s := NewBrokerService(DefaultConfig())
	req := s.Submit(portfolio.ExerciseQuote{Index: 2, Net: 7_600})

	if pending := s.PendingRequests(); len(pending) != 1 || pending[0].ID != req.ID {
		t.Fatalf("expected one pending request, got %+v", pending)
	}

	got, err := s.Decide(req.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Processed || !got.Accepted || got.Quote.Index != 2 {
		t.Errorf("unexpected decided request %+v", got)
	}
	if len(s.PendingRequests()) != 0 {
		t.Error("expected no pending requests")
	}

	if _, err := s.Decide(req.ID, false); !errors.Is(err, ErrRequestProcessed) {
		t.Errorf("expected ErrRequestProcessed, got %v", err)
	}
	if _, err := s.Decide(uuid.New(), true); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("expected ErrUnknownRequest, got %v", err)
	}
}

func TestCapacityAndReset(t *testing.T) {
	s := NewBrokerService(Config{RequestCapacity: 2})
	first := s.Submit(portfolio.ExerciseQuote{Index: 0})
	s.Submit(portfolio.ExerciseQuote{Index: 1})
	s.Submit(portfolio.ExerciseQuote{Index: 2})

	if n := len(s.Requests()); n != 2 {
		t.Fatalf("expected 2 requests, got %d", n)
	}
	if _, err := s.Request(first.ID); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("expected oldest request evicted, got %v", err)
	}

	s.Reset()
	if len(s.Requests()) != 0 {
		t.Error("expected no requests after reset")
	}
}
