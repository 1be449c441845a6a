package strategy

import (
	"github.com/zappabad/optionsim/internal/portfolio"
	"github.com/zappabad/optionsim/internal/trader"
)

// Evaluate replays every holding under policy at the final spots and compares
// the result with the player's realized profit over the same invested base.
// Holdings whose asset has no final spot are never exercised.
func Evaluate(policy ExercisePolicy, holdings []portfolio.Holding, finalSpots map[string]int64, playerProfit int64) trader.Report {
	r := trader.Report{
		Policy:       policy.Name(),
		Decisions:    make([]trader.Decision, len(holdings)),
		PlayerProfit: playerProfit,
	}

	for i, h := range holdings {
		r.Invested += h.TotalCost

		spot, ok := finalSpots[h.Asset]
		d := trader.Decision{Index: i, Holding: h, FinalSpot: spot}
		if ok {
			d.Gross = h.Gross(spot)
			d.Net = d.Gross - h.TotalCost
			d.Exercise = policy.ShouldExercise(h, spot)
		}
		if d.Exercise {
			r.AIProfit += d.Net
			r.AIExecuted++
		}
		r.Decisions[i] = d
	}

	r.PlayerROI = portfolio.ROI(r.PlayerProfit, r.Invested)
	r.AIROI = portfolio.ROI(r.AIProfit, r.Invested)
	r.Verdict = trader.Judge(r.PlayerROI, r.AIROI)
	return r
}
