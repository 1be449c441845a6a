package service

// Config holds configuration for the market service.
type Config struct {
	// PriceSwing is the full width of the per-tick multiplier band; 0.1 means
	// every tick multiplies the price by a uniform draw from [0.95, 1.05].
	PriceSwing float64
	// MarketEventBuffer is the size of the market events channel.
	MarketEventBuffer int
	// DropMarketEvents determines whether the market events channel drops on overflow.
	DropMarketEvents bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PriceSwing:        0.1,
		MarketEventBuffer: 256,
		DropMarketEvents:  true,
	}
}
