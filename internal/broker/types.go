// Package broker holds exercise quotes that wait for the player's decision
// between the propose and commit steps.
package broker

import (
	"github.com/google/uuid"

	"github.com/zappabad/optionsim/internal/portfolio"
)

// Request is an exercise quote awaiting approval.
type Request struct {
	ID        uuid.UUID
	Time      int64
	Quote     portfolio.ExerciseQuote
	Processed bool
	Accepted  bool
}
