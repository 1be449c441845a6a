package game

import (
	"time"

	"github.com/zappabad/optionsim/internal/market"
	"github.com/zappabad/optionsim/internal/news"
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/pricing"
	"github.com/zappabad/optionsim/internal/trader"
)

// Moneyness tags a holding's strike against the current spot.
type Moneyness string

const (
	InTheMoney    Moneyness = "itm"
	AtTheMoney    Moneyness = "atm"
	OutOfTheMoney Moneyness = "otm"
)

// MoneynessOf classifies a call struck at strike with the underlying at spot.
func MoneynessOf(spot, strike int64) Moneyness {
	switch {
	case spot > strike:
		return InTheMoney
	case spot < strike:
		return OutOfTheMoney
	default:
		return AtTheMoney
	}
}

// AssetView is an asset with its last-tick direction and the option price
// currently offered on it.
type AssetView struct {
	market.Asset
	Direction market.Direction
	Quote     pricing.Quote
}

// HoldingView is a holding with fields derived from the current market.
type HoldingView struct {
	portfolio.Holding
	Index     int
	Spot      int64
	Moneyness Moneyness
}

// OptionQuote is the price of buying Quantity units of an asset's call.
type OptionQuote struct {
	Asset    string
	Quantity int64
	pricing.Quote
	Total      int64
	Affordable bool
}

// Result is computed once on entering PhaseResult.
type Result struct {
	Summary     portfolio.Summary
	Report      trader.Report
	FinalPrices map[string]int64
}

// State is a point-in-time copy of everything a presentation layer reads.
type State struct {
	Phase      Phase
	Difficulty Difficulty
	Countdown  int
	Remaining  int
	Now        time.Time // zero outside PhaseActive
	Capital    int64
	Assets     []AssetView
	Holdings   []HoldingView
	Log        []news.Item // newest first
	Flash      bool
	Result     *Result
}
