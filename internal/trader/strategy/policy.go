package strategy

import "github.com/zappabad/optionsim/internal/portfolio"

// ExercisePolicy decides whether a holding should be exercised at spot.
type ExercisePolicy interface {
	Name() string
	ShouldExercise(h portfolio.Holding, spot int64) bool
}

// Moneyness exercises every in-the-money holding, ignoring the premium paid.
// It is the AI benchmark.
type Moneyness struct{}

func (Moneyness) Name() string { return "moneyness" }

func (Moneyness) ShouldExercise(h portfolio.Holding, spot int64) bool {
	return spot > h.Strike
}

// NetProfit exercises only when the payoff exceeds the premium paid. It is the
// recommendation shown to the player.
type NetProfit struct{}

func (NetProfit) Name() string { return "net-profit" }

func (NetProfit) ShouldExercise(h portfolio.Holding, spot int64) bool {
	return h.Gross(spot)-h.TotalCost > 0
}
