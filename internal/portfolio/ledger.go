package portfolio

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zappabad/optionsim/internal/pricing"
)

// Ledger holds capital and the append-only list of holdings. All reads and
// writes are serialized by its mutex.
type Ledger struct {
	mu       sync.RWMutex
	initial  int64
	capital  int64
	holdings []Holding
	tape     *ActivityTape
}

// NewLedger creates a ledger starting with capital.
func NewLedger(capital int64) *Ledger {
	if capital <= 0 {
		capital = DefaultCapital
	}
	return &Ledger{initial: capital, capital: capital, tape: NewActivityTape(DefaultTapeSize)}
}

// Cost returns the total premium for qty units at quote.
func Cost(quote pricing.Quote, qty int64) int64 {
	return quote.Premium * qty
}

// Buy debits the premium for qty units of asset at quote and appends a holding.
// Nothing changes when it returns an error.
func (l *Ledger) Buy(asset string, quote pricing.Quote, qty int64) (Holding, error) {
	if qty <= 0 {
		return Holding{}, ErrInvalidQuantity
	}
	total := Cost(quote, qty)

	l.mu.Lock()
	defer l.mu.Unlock()

	if total > l.capital {
		return Holding{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, total, l.capital)
	}

	h := Holding{
		ID:             uuid.New(),
		Asset:          asset,
		Quantity:       qty,
		PremiumPerUnit: quote.Premium,
		TotalCost:      total,
		Strike:         quote.Strike,
	}
	l.capital -= total
	l.holdings = append(l.holdings, h)
	l.tape.Append(Activity{
		Kind:      ActivityBuy,
		HoldingID: h.ID,
		Index:     len(l.holdings) - 1,
		Asset:     asset,
		Quantity:  qty,
		Amount:    -total,
		Capital:   l.capital,
	})
	return h, nil
}

// ProposeExercise prices exercising holding index at spot. It never mutates.
func (l *Ledger) ProposeExercise(index int, spot int64) (ExerciseQuote, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.holdings) {
		return ExerciseQuote{}, ErrUnknownHolding
	}
	h := l.holdings[index]
	if h.Executed {
		return ExerciseQuote{}, ErrStaleHolding
	}

	gross := h.Gross(spot)
	net := gross - h.TotalCost
	return ExerciseQuote{
		HoldingID: h.ID,
		Index:     index,
		Asset:     h.Asset,
		Quantity:  h.Quantity,
		Spot:      spot,
		Strike:    h.Strike,
		TotalCost: h.TotalCost,
		Gross:     gross,
		Net:       net,
		Recommend: net > 0,
	}, nil
}

// CommitExercise settles q when accepted: capital grows by the quoted gross
// and the holding is marked executed with the quoted net as its profit.
// A declined quote leaves the ledger untouched. A holding can settle once;
// later commits fail with ErrStaleHolding. An accepted exercise whose loss
// exceeds the capital fails with ErrInsufficientFunds; capital never goes
// negative.
func (l *Ledger) CommitExercise(q ExerciseQuote, accepted bool) (Settlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if q.Index < 0 || q.Index >= len(l.holdings) {
		return Settlement{}, ErrUnknownHolding
	}
	h := &l.holdings[q.Index]
	if h.ID != q.HoldingID {
		return Settlement{}, ErrQuoteMismatch
	}
	if h.Executed {
		return Settlement{}, ErrStaleHolding
	}
	entry := Activity{
		Kind:      ActivityDecline,
		HoldingID: h.ID,
		Index:     q.Index,
		Asset:     h.Asset,
		Quantity:  h.Quantity,
	}
	if !accepted {
		entry.Capital = l.capital
		l.tape.Append(entry)
		return Settlement{Quote: q, Capital: l.capital}, nil
	}

	credit := q.Net + h.TotalCost
	if l.capital+credit < 0 {
		return Settlement{}, fmt.Errorf("%w: exercise pays %d, have %d", ErrInsufficientFunds, credit, l.capital)
	}

	l.capital += credit
	h.Executed = true
	h.Profit = q.Net
	entry.Kind = ActivityExercise
	entry.Amount = credit
	entry.Capital = l.capital
	l.tape.Append(entry)
	return Settlement{Quote: q, Accepted: true, Capital: l.capital}, nil
}

// Capital returns the current cash balance.
func (l *Ledger) Capital() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.capital
}

// Holdings returns a copy of every holding in purchase order.
func (l *Ledger) Holdings() []Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// IndexOf returns the ledger position of the holding with id.
func (l *Ledger) IndexOf(id uuid.UUID) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, h := range l.holdings {
		if h.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Holding returns a copy of the holding at index.
func (l *Ledger) Holding(index int) (Holding, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.holdings) {
		return Holding{}, ErrUnknownHolding
	}
	return l.holdings[index], nil
}

// Activity returns the last n ledger entries, oldest first.
func (l *Ledger) Activity(n int) []Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tape.Last(n)
}

// Summary aggregates the ledger.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{Capital: l.capital, MaxProfit: -1, MaxLoss: -1}
	for i, h := range l.holdings {
		s.Invested += h.TotalCost
		if !h.Executed {
			s.Unexecuted++
			continue
		}
		s.Executed++
		s.Realized += h.Profit
		switch {
		case h.Profit > 0:
			s.ProfitCount++
		case h.Profit < 0:
			s.LossCount++
		}
		if s.MaxProfit < 0 || h.Profit > l.holdings[s.MaxProfit].Profit {
			s.MaxProfit = i
		}
		if s.MaxLoss < 0 || h.Profit < l.holdings[s.MaxLoss].Profit {
			s.MaxLoss = i
		}
	}
	s.ROI = ROI(s.Realized, s.Invested)
	return s
}

// Reset restores the starting capital and drops every holding.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.capital = l.initial
	l.holdings = nil
	l.tape.Clear()
}
