package strategy

import (
	"context"

	"github.com/zappabad/optionsim/internal/pricing"
	"github.com/zappabad/optionsim/internal/trader"
)

// Follower buys one asset per step in rotation and asks to exercise every open
// holding. The runner commits an exercise only when it is recommended, so the
// follower plays the rational-human benchmark.
type Follower struct {
	Quantity int64
	next     int
}

// NewFollower creates a Follower buying qty units per step.
func NewFollower(qty int64) *Follower {
	if qty <= 0 {
		qty = 1
	}
	return &Follower{Quantity: qty}
}

// Step implements Strategy.
func (f *Follower) Step(ctx context.Context, now int64, mr MarketReader, pr PortfolioReader) []trader.Intent {
	var intents []trader.Intent

	for i, h := range pr.Holdings() {
		if !h.Executed {
			intents = append(intents, trader.Intent{Kind: trader.IntentExercise, Index: i})
		}
	}

	assets := mr.Assets()
	if len(assets) == 0 {
		return intents
	}
	a := assets[f.next%len(assets)]
	f.next++

	cost := pricing.QuoteCall(a.Price, a.Volatility).Premium * f.Quantity
	if cost <= pr.Capital() {
		intents = append(intents, trader.Intent{Kind: trader.IntentBuy, Asset: a.Name, Quantity: f.Quantity})
	}
	return intents
}
