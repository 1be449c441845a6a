package view

import "github.com/zappabad/optionsim/internal/market"

// EventKind distinguishes routine ticks from news shocks.
type EventKind uint8

const (
	EventKindTick EventKind = iota
	EventKindShock
)

func (k EventKind) String() string {
	switch k {
	case EventKindTick:
		return "TICK"
	case EventKindShock:
		return "SHOCK"
	default:
		return "UNKNOWN"
	}
}

// MarketEvent reports the price changes produced by one mutation of the asset collection.
type MarketEvent struct {
	Kind  EventKind
	Time  int64 // unix nanos
	Moves []market.PriceMove
}
