package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/trader"
	"github.com/zappabad/optionsim/tui/styles"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func signed(v int64) *color.Color {
	if v > 0 {
		return success
	}
	if v < 0 {
		return danger
	}
	return neutral
}

func printReport(w io.Writer, st game.State, stats botStats) {
	res := st.Result
	s, r := res.Summary, res.Report

	accent.Fprintf(w, "Game over (%s)\n", st.Difficulty)
	fmt.Fprintf(w, "  bot bought %d, exercised %d", stats.Bought, stats.Exercised)
	if stats.Errors > 0 {
		fmt.Fprintf(w, ", %d rejected (last: %s)", stats.Errors, stats.LastError)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-10s %s\n", "capital", styles.FormatMoney(s.Capital))
	fmt.Fprintf(w, "  %-10s %s\n", "invested", styles.FormatMoney(s.Invested))
	fmt.Fprintf(w, "  %-10s %d executed, %d open\n", "holdings", s.Executed, s.Unexecuted)
	fmt.Fprintln(w)

	neutral.Fprintf(w, "  %-8s %14s %10s\n", "", "profit", "roi")
	fmt.Fprintf(w, "  %-8s ", "player")
	signed(s.Realized).Fprintf(w, "%14s %9s%%\n", styles.FormatMoney(s.Realized), r.PlayerROI.String())
	fmt.Fprintf(w, "  %-8s ", "ai")
	signed(r.AIProfit).Fprintf(w, "%14s %9s%%\n", styles.FormatMoney(r.AIProfit), r.AIROI.String())
	fmt.Fprintln(w)

	switch r.Verdict {
	case trader.VerdictPlayer:
		success.Fprintln(w, "The player beat the AI.")
	case trader.VerdictAI:
		danger.Fprintln(w, "The AI wins.")
	default:
		warn.Fprintln(w, "Tie.")
	}
}
