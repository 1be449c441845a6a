package market

import (
	"math"
	"slices"
)

// Category tags the kinds of news an asset reacts to.
type Category string

const (
	CategoryEconomy     Category = "economy"
	CategorySentiment   Category = "sentiment"
	CategoryManagement  Category = "management"
	CategoryLegal       Category = "legal"
	CategorySocial      Category = "social"
	CategoryEnvironment Category = "environment"
)

// Categories returns every category in catalog order.
func Categories() []Category {
	return []Category{
		CategoryEconomy,
		CategorySentiment,
		CategoryManagement,
		CategoryLegal,
		CategorySocial,
		CategoryEnvironment,
	}
}

// Asset is a tradeable underlying. Price is in whole currency units and never
// drops below 1; Volatility stays within [0, 1].
type Asset struct {
	Name       string
	Price      int64
	Volatility float64
	Events     []Category
}

// Reacts reports whether news of category c moves this asset.
func (a Asset) Reacts(c Category) bool {
	return slices.Contains(a.Events, c)
}

// Clone returns a copy that shares no memory with a.
func (a Asset) Clone() Asset {
	a.Events = slices.Clone(a.Events)
	return a
}

// Direction is the presentation tag for the last price tick.
type Direction int8

const (
	DirectionSame Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "same"
	}
}

// DirectionOf compares a new price against the previously recorded one.
func DirectionOf(prev, cur int64) Direction {
	switch {
	case cur > prev:
		return DirectionUp
	case cur < prev:
		return DirectionDown
	default:
		return DirectionSame
	}
}

// ClampPrice rounds p to whole units with a floor of 1.
func ClampPrice(p float64) int64 {
	r := math.Round(p)
	if r < 1 || math.IsNaN(r) {
		return 1
	}
	return int64(r)
}

// ClampVolatility bounds v to [0, 1].
func ClampVolatility(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// PriceMove records one asset's change during a price tick.
type PriceMove struct {
	Name      string
	From      int64
	To        int64
	Direction Direction
}

// Snapshot is a read-only copy of the asset collection.
type Snapshot struct {
	Assets  []Asset
	Changes map[string]Direction
}
