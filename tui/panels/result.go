package panels

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/trader"
	"github.com/zappabad/optionsim/tui/styles"
)

// RenderResult draws the end-of-game report.
func RenderResult(res *game.Result, holdings []game.HoldingView) string {
	if res == nil {
		return styles.MutedRowStyle.Render("No result")
	}
	s := res.Summary
	r := res.Report

	verdict := "It's a tie."
	switch r.Verdict {
	case trader.VerdictPlayer:
		verdict = styles.ProfitStyle.Render("You beat the AI!")
	case trader.VerdictAI:
		verdict = styles.LossStyle.Render("The AI wins this round.")
	}

	lines := []string{
		styles.BannerStyle.Render("Game Over"),
		"",
		row("Capital", styles.FormatMoney(s.Capital)),
		row("Invested", styles.FormatMoney(s.Invested)),
		row("Realized", styles.SignedStyle(s.Realized).Render(styles.FormatMoney(s.Realized))),
		row("Executed", fmt.Sprintf("%d of %d", s.Executed, s.Executed+s.Unexecuted)),
		row("Wins", fmt.Sprintf("%d profit / %d loss", s.ProfitCount, s.LossCount)),
	}
	if h, ok := pickHolding(holdings, s.MaxProfit); ok {
		lines = append(lines, row("Best", fmt.Sprintf("%s x%d %s", h.Asset, h.Quantity, styles.FormatMoney(h.Profit))))
	}
	if h, ok := pickHolding(holdings, s.MaxLoss); ok {
		lines = append(lines, row("Worst", fmt.Sprintf("%s x%d %s", h.Asset, h.Quantity, styles.FormatMoney(h.Profit))))
	}

	lines = append(lines,
		"",
		styles.HeaderStyle.Render(fmt.Sprintf("%-8s %14s %10s", "", "Profit", "ROI")),
		fmt.Sprintf("%-8s %14s %9s%%", "You", styles.FormatMoney(s.Realized), r.PlayerROI.String()),
		fmt.Sprintf("%-8s %14s %9s%%", "AI", styles.FormatMoney(r.AIProfit), r.AIROI.String()),
		"",
		verdict,
		"",
		styles.StatusBarKeyStyle.Render("r")+styles.StatusBarDescStyle.Render(" play again  ")+
			styles.StatusBarKeyStyle.Render("q")+styles.StatusBarDescStyle.Render(" quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func pickHolding(holdings []game.HoldingView, i int) (game.HoldingView, bool) {
	if i < 0 || i >= len(holdings) {
		return game.HoldingView{}, false
	}
	return holdings[i], true
}
