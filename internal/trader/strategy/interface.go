package strategy

import (
	"context"

	"github.com/zappabad/optionsim/internal/market"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/trader"
)

// MarketReader provides read-only access to market data.
type MarketReader interface {
	Assets() []market.Asset
}

// PortfolioReader provides read-only access to the player's ledger.
type PortfolioReader interface {
	Capital() int64
	Holdings() []portfolio.Holding
}

// Strategy is the interface for automated players.
type Strategy interface {
	// Step is called on each tick and returns the intents to execute.
	Step(ctx context.Context, now int64, mr MarketReader, pr PortfolioReader) []trader.Intent
}
