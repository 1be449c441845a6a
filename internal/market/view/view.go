package view

import (
	"maps"
	"sync"

	"github.com/zappabad/optionsim/internal/market"
)

// MarketView remembers the price recorded at the last routine tick and the
// direction tag that tick produced for each asset. Shocks between ticks do not
// touch it, so the next tick is still compared against the last tick's price.
type MarketView struct {
	mu      sync.RWMutex
	last    map[string]int64
	changes map[string]market.Direction
}

// NewMarketView creates a view seeded with the given starting prices.
func NewMarketView(assets []market.Asset) *MarketView {
	v := &MarketView{}
	v.Reset(assets)
	return v
}

// Apply records a routine tick. prices holds the post-tick price of every asset.
// The returned moves carry directions relative to the previous tick.
func (v *MarketView) Apply(prices []market.PriceMove) []market.PriceMove {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]market.PriceMove, len(prices))
	for i, mv := range prices {
		prev, ok := v.last[mv.Name]
		if !ok {
			prev = mv.From
		}
		mv.Direction = market.DirectionOf(prev, mv.To)
		v.last[mv.Name] = mv.To
		v.changes[mv.Name] = mv.Direction
		out[i] = mv
	}
	return out
}

// Direction returns the tag from the most recent tick (same if none yet).
func (v *MarketView) Direction(name string) market.Direction {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.changes[name]
}

// Changes returns a copy of every asset's direction tag.
func (v *MarketView) Changes() map[string]market.Direction {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.changes)
}

// Reset forgets all ticks and records the given prices as the baseline.
func (v *MarketView) Reset(assets []market.Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.last = make(map[string]int64, len(assets))
	v.changes = make(map[string]market.Direction, len(assets))
	for _, a := range assets {
		v.last[a.Name] = a.Price
		v.changes[a.Name] = market.DirectionSame
	}
}
