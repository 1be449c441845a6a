package portfolio

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zappabad/optionsim/internal/pricing"
)

var butcherQuote = pricing.Quote{Spot: 50_000, Strike: 55_000, Premium: 1_200}

func TestBuyDebitsCapital(t *testing.T) {
	l := NewLedger(DefaultCapital)

	h, err := l.Buy("Butcher Co", butcherQuote, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Capital() != 997_600 {
		t.Errorf("expected capital 997600, got %d", l.Capital())
	}
	if h.TotalCost != 2_400 || h.Strike != 55_000 || h.Executed {
		t.Errorf("unexpected holding %+v", h)
	}
	if got := l.Holdings(); len(got) != 1 || got[0].ID != h.ID {
		t.Errorf("expected one holding with id %s", h.ID)
	}
}

func TestBuyRejectsWithoutMutation(t *testing.T) {
	l := NewLedger(1_000)

	tests := []struct {
		name string
		qty  int64
		want error
	}{
		{"zero quantity", 0, ErrInvalidQuantity},
		{"negative quantity", -3, ErrInvalidQuantity},
		{"too expensive", 1, ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Buy("Butcher Co", butcherQuote, tt.qty)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if l.Capital() != 1_000 || len(l.Holdings()) != 0 {
				t.Errorf("ledger mutated on rejection: capital %d, holdings %d", l.Capital(), len(l.Holdings()))
			}
		})
	}

	// Spending exactly the remaining capital is allowed.
	if _, err := l.Buy("K-Pop Shares", pricing.Quote{Spot: 10, Strike: 11, Premium: 500}, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Capital() != 0 {
		t.Errorf("expected capital 0, got %d", l.Capital())
	}
}

func TestExerciseScenario(t *testing.T) {
	l := NewLedger(DefaultCapital)
	if _, err := l.Buy("Butcher Co", butcherQuote, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q, err := l.ProposeExercise(0, 60_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Gross != 10_000 || q.Net != 7_600 || !q.Recommend {
		t.Errorf("unexpected quote %+v", q)
	}
	if l.Capital() != 997_600 {
		t.Fatalf("propose must not mutate, capital %d", l.Capital())
	}

	st, err := l.CommitExercise(q, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Accepted || st.Capital != 1_007_600 || l.Capital() != 1_007_600 {
		t.Errorf("expected capital 1007600, got %d", l.Capital())
	}
	h, _ := l.Holding(0)
	if !h.Executed || h.Profit != 7_600 {
		t.Errorf("unexpected holding after exercise %+v", h)
	}

	// A second commit of the same quote must not pay out again.
	if _, err := l.CommitExercise(q, true); !errors.Is(err, ErrStaleHolding) {
		t.Errorf("expected ErrStaleHolding, got %v", err)
	}
	if _, err := l.ProposeExercise(0, 70_000); !errors.Is(err, ErrStaleHolding) {
		t.Errorf("expected ErrStaleHolding on propose, got %v", err)
	}
	if l.Capital() != 1_007_600 {
		t.Errorf("capital changed on stale commit: %d", l.Capital())
	}
}

func TestCommitDeclinedLeavesLedger(t *testing.T) {
	l := NewLedger(DefaultCapital)
	l.Buy("Butcher Co", butcherQuote, 2)

	q, _ := l.ProposeExercise(0, 60_000)
	st, err := l.CommitExercise(q, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Accepted || l.Capital() != 997_600 {
		t.Errorf("declined commit mutated ledger: %+v", st)
	}
	if h, _ := l.Holding(0); h.Executed {
		t.Error("declined commit executed the holding")
	}
}

func TestExerciseAtALoss(t *testing.T) {
	l := NewLedger(DefaultCapital)
	l.Buy("Butcher Co", butcherQuote, 2)

	q, _ := l.ProposeExercise(0, 54_000)
	if q.Recommend || q.Net != -4_400 {
		t.Fatalf("unexpected quote %+v", q)
	}
	// The recommendation is advisory.
	if _, err := l.CommitExercise(q, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Capital() != 995_600 {
		t.Errorf("expected capital 995600, got %d", l.Capital())
	}
}

func TestExerciseLossBeyondCapitalRejected(t *testing.T) {
	l := NewLedger(10_000)
	l.Buy("Butcher Co", butcherQuote, 2)

	q, _ := l.ProposeExercise(0, 25_000)
	if q.Gross != -60_000 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if _, err := l.CommitExercise(q, true); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if l.Capital() != 7_600 {
		t.Errorf("expected capital 7600, got %d", l.Capital())
	}
	if h, _ := l.Holding(0); h.Executed {
		t.Error("rejected commit executed the holding")
	}
	if got := l.Activity(10); len(got) != 1 {
		t.Errorf("expected only the buy on the tape, got %d entries", len(got))
	}

	// A loss the capital covers still settles, down to exactly zero.
	q, _ = l.ProposeExercise(0, 51_200)
	if q.Gross != -7_600 {
		t.Fatalf("unexpected quote %+v", q)
	}
	st, err := l.CommitExercise(q, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Capital != 0 {
		t.Errorf("expected capital 0, got %d", st.Capital)
	}
}

func TestIndexOf(t *testing.T) {
	l := NewLedger(DefaultCapital)
	first, _ := l.Buy("Butcher Co", butcherQuote, 1)
	second, _ := l.Buy("Butcher Co", butcherQuote, 1)

	if i, ok := l.IndexOf(second.ID); !ok || i != 1 {
		t.Errorf("expected index 1, got %d %v", i, ok)
	}
	if i, ok := l.IndexOf(first.ID); !ok || i != 0 {
		t.Errorf("expected index 0, got %d %v", i, ok)
	}
	l.Reset()
	if _, ok := l.IndexOf(first.ID); ok {
		t.Error("expected unknown holding after reset")
	}
}

func TestCommitMismatchedQuote(t *testing.T) {
	l := NewLedger(DefaultCapital)
	l.Buy("Butcher Co", butcherQuote, 1)
	l.Buy("Bitcoin", pricing.Quote{Spot: 200_000, Strike: 220_000, Premium: 9_000}, 1)

	q, _ := l.ProposeExercise(0, 60_000)
	q.Index = 1
	if _, err := l.CommitExercise(q, true); !errors.Is(err, ErrQuoteMismatch) {
		t.Errorf("expected ErrQuoteMismatch, got %v", err)
	}
	q.Index = 7
	if _, err := l.CommitExercise(q, true); !errors.Is(err, ErrUnknownHolding) {
		t.Errorf("expected ErrUnknownHolding, got %v", err)
	}
	if _, err := l.ProposeExercise(-1, 1); !errors.Is(err, ErrUnknownHolding) {
		t.Errorf("expected ErrUnknownHolding, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	l := NewLedger(DefaultCapital)
	quote := pricing.Quote{Spot: 100, Strike: 110, Premium: 10}
	for i := 0; i < 5; i++ {
		if _, err := l.Buy("K-Index", quote, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Profits: +20, -5, +20, (unexecuted), -5.
	for _, ex := range []struct {
		index int
		spot  int64
	}{{0, 140}, {1, 115}, {2, 140}, {4, 115}} {
		q, err := l.ProposeExercise(ex.index, ex.spot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := l.CommitExercise(q, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	s := l.Summary()
	if s.Invested != 50 || s.Realized != 30 {
		t.Errorf("expected invested 50 realized 30, got %d %d", s.Invested, s.Realized)
	}
	if s.Executed != 4 || s.Unexecuted != 1 || s.ProfitCount != 2 || s.LossCount != 2 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.MaxProfit != 0 || s.MaxLoss != 1 {
		t.Errorf("expected first-wins ties at 0 and 1, got %d and %d", s.MaxProfit, s.MaxLoss)
	}
	if !s.ROI.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected ROI 60, got %s", s.ROI)
	}
}

func TestSummaryEmpty(t *testing.T) {
	s := NewLedger(DefaultCapital).Summary()
	if s.MaxProfit != -1 || s.MaxLoss != -1 || !s.ROI.IsZero() {
		t.Errorf("unexpected empty summary %+v", s)
	}
}

func TestROIRounding(t *testing.T) {
	tests := []struct {
		profit, invested int64
		want             string
	}{
		{7_600, 2_400, "316.67"},
		{-1, 3, "-33.33"},
		{1, 0, "0"},
		{1, 8, "12.5"},
	}
	for _, tt := range tests {
		if got := ROI(tt.profit, tt.invested); got.String() != tt.want {
			t.Errorf("ROI(%d, %d): expected %s, got %s", tt.profit, tt.invested, tt.want, got)
		}
	}
}

func TestReset(t *testing.T) {
	l := NewLedger(DefaultCapital)
	l.Buy("Butcher Co", butcherQuote, 3)
	l.Reset()

	if l.Capital() != DefaultCapital || len(l.Holdings()) != 0 {
		t.Errorf("expected fresh ledger, got capital %d with %d holdings", l.Capital(), len(l.Holdings()))
	}
}
