// Package portfolio is the player's cash and option ledger.
package portfolio

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCapital is the cash a new game starts with.
const DefaultCapital int64 = 1_000_000

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrStaleHolding      = errors.New("holding already executed")
	ErrUnknownHolding    = errors.New("unknown holding")
	ErrQuoteMismatch     = errors.New("quote does not match holding")
	ErrStaleQuote        = errors.New("spot moved since the quote")
)

// Holding is a purchased call option position. Holdings are never removed;
// their order in the ledger is purchase order.
type Holding struct {
	ID             uuid.UUID
	Asset          string
	Quantity       int64
	PremiumPerUnit int64
	TotalCost      int64
	Strike         int64
	Executed       bool
	Profit         int64 // net of TotalCost; meaningful only once Executed
}

// Gross is the cash an exercise at spot would return before the premium paid.
func (h Holding) Gross(spot int64) int64 {
	return (spot - h.Strike) * h.Quantity
}

// ExerciseQuote is the preview shown before the player confirms an exercise.
type ExerciseQuote struct {
	HoldingID uuid.UUID
	Index     int
	Asset     string
	Quantity  int64
	Spot      int64
	Strike    int64
	TotalCost int64
	Gross     int64
	Net       int64
	// Recommend is advisory: the exercise nets a profit.
	Recommend bool
}

// Settlement is the outcome of committing an exercise quote.
type Settlement struct {
	Quote    ExerciseQuote
	Accepted bool
	Capital  int64 // ledger capital after the commit
}

// Summary aggregates the ledger for the result screen.
type Summary struct {
	Capital     int64
	Invested    int64 // total premium paid across every holding
	Realized    int64 // sum of Profit over executed holdings
	Executed    int
	Unexecuted  int
	ProfitCount int // executed holdings with Profit > 0
	LossCount   int // executed holdings with Profit < 0
	// MaxProfit and MaxLoss index the executed holdings with the highest and
	// lowest Profit, first in purchase order on ties; -1 when nothing executed.
	MaxProfit int
	MaxLoss   int
	ROI       decimal.Decimal
}

// ROI returns profit as a percentage of invested, rounded to two decimals.
// It is zero when nothing was invested.
func ROI(profit, invested int64) decimal.Decimal {
	if invested <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(profit).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(invested), 2)
}
