// Package trader holds exercise decisions, the player-vs-AI verdict and the
// intents an automated player issues.
package trader

import (
	"github.com/shopspring/decimal"

	"github.com/zappabad/optionsim/internal/portfolio"
)

// Verdict names the winner of a game.
type Verdict int8

const (
	VerdictTie Verdict = iota
	VerdictPlayer
	VerdictAI
)

func (v Verdict) String() string {
	switch v {
	case VerdictPlayer:
		return "player"
	case VerdictAI:
		return "ai"
	default:
		return "tie"
	}
}

// Judge compares ROIs already rounded to two decimals.
func Judge(playerROI, aiROI decimal.Decimal) Verdict {
	switch playerROI.Cmp(aiROI) {
	case 1:
		return VerdictPlayer
	case -1:
		return VerdictAI
	default:
		return VerdictTie
	}
}

// Decision is a policy's exercise choice for one holding at the final spot.
type Decision struct {
	Index     int
	Holding   portfolio.Holding
	FinalSpot int64
	Exercise  bool
	Gross     int64
	Net       int64
}

// Report is the counterfactual comparison produced when a game ends.
type Report struct {
	Policy       string
	Decisions    []Decision
	Invested     int64
	PlayerProfit int64
	AIProfit     int64
	AIExecuted   int
	PlayerROI    decimal.Decimal
	AIROI        decimal.Decimal
	Verdict      Verdict
}

// IntentKind is the action an automated player wants to take.
type IntentKind int8

const (
	IntentBuy IntentKind = iota
	IntentExercise
)

func (k IntentKind) String() string {
	if k == IntentExercise {
		return "exercise"
	}
	return "buy"
}

// Intent is one action requested by a strategy.
type Intent struct {
	Kind     IntentKind
	Asset    string // buy
	Quantity int64  // buy
	Index    int    // exercise
}

// TraderEventType indicates the type of trader event.
type TraderEventType int

const (
	TraderEventBought TraderEventType = iota
	TraderEventExercised
	TraderEventDeclined
	TraderEventError
)

// TraderEvent reports what happened to an intent.
type TraderEvent struct {
	Time    int64
	Type    TraderEventType
	Intent  Intent
	Message string // optional, for errors or info
}
