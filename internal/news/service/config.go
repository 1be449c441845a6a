package service

import (
	"time"

	newsview "github.com/zappabad/optionsim/internal/news/view"
)

// Config holds configuration for the news service.
type Config struct {
	// LogSize is the capacity of the event log ring buffer.
	LogSize int
	// PositiveOdds is the probability that a tick draws positive polarity.
	PositiveOdds float64
	// FlashDuration is how long Flashing reports true after a publish.
	FlashDuration time.Duration
	// ExternalEventBuffer is the size of the external events channel.
	ExternalEventBuffer int
	// DropExternalEvents determines whether external event channel drops on overflow.
	DropExternalEvents bool
	// Now is the clock used for item timestamps and the flash window.
	// Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		LogSize:             newsview.DefaultCapacity,
		PositiveOdds:        0.6,
		FlashDuration:       time.Second,
		ExternalEventBuffer: 256,
		DropExternalEvents:  true,
	}
}
