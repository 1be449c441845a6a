package news

import "github.com/zappabad/optionsim/internal/market"

// ItemID uniquely identifies a published news item.
type ItemID int64

// Polarity is the direction a news event pushes prices.
type Polarity int8

const (
	PolarityNegative Polarity = iota
	PolarityPositive
)

func (p Polarity) String() string {
	if p == PolarityPositive {
		return "positive"
	}
	return "negative"
}

// PolarityOf classifies a resolved price impact. Zero counts as negative.
func PolarityOf(impact float64) Polarity {
	if impact > 0 {
		return PolarityPositive
	}
	return PolarityNegative
}

// Rand is the randomness impact resolution consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Impact is a template's fractional price move. It is either a fixed value or a
// coin flip between two values, decided when the template is considered.
type Impact struct {
	fixed   float64
	choices []float64
}

// FixedImpact returns an impact that always resolves to v.
func FixedImpact(v float64) Impact {
	return Impact{fixed: v}
}

// EitherImpact returns an impact that resolves to up or down with equal odds.
func EitherImpact(up, down float64) Impact {
	return Impact{choices: []float64{up, down}}
}

// Randomized reports whether Resolve consumes randomness.
func (i Impact) Randomized() bool {
	return len(i.choices) > 0
}

// Resolve returns the concrete price impact.
func (i Impact) Resolve(rng Rand) float64 {
	if !i.Randomized() {
		return i.fixed
	}
	if rng.Float64() > 0.5 {
		return i.choices[0]
	}
	return i.choices[1]
}

// Template is an immutable catalog entry for a market-moving event.
type Template struct {
	Category         market.Category
	Message          string
	PriceImpact      Impact
	VolatilityImpact float64
}

// Item is a published news event as it appears in the event log.
type Item struct {
	ID               ItemID
	Time             int64 // unix nanos
	Category         market.Category
	Message          string
	Impact           float64 // resolved fractional price impact
	VolatilityImpact float64
	Affected         []string // names of the assets that moved
}
