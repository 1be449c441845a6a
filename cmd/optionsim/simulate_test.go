package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/zappabad/optionsim/internal/config"
	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/portfolio"
)

func TestRunSimulationFinishes(t *testing.T) {
	gc := game.DefaultConfig()
	gc.Seed = 42
	gc.Difficulty = game.DifficultyHigh
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, stats, err := runSimulation(gc, config.BotConfig{Interval: 5 * time.Second, Quantity: 1}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Phase != game.PhaseResult || st.Result == nil {
		t.Fatalf("expected a finished game, got %s", st.Phase)
	}
	if stats.Bought == 0 {
		t.Error("expected the bot to buy something")
	}
	if len(st.Holdings) != stats.Bought {
		t.Errorf("expected %d holdings, got %d", stats.Bought, len(st.Holdings))
	}

	// Every exercise the bot made was recommended, so none lost money.
	for _, h := range st.Holdings {
		if h.Executed && h.Profit <= 0 {
			t.Errorf("bot exercised holding %d at a loss: %d", h.Index, h.Profit)
		}
	}
	if st.Capital != st.Result.Summary.Capital {
		t.Errorf("capital mismatch: %d vs %d", st.Capital, st.Result.Summary.Capital)
	}
}

func TestRunSimulationIsDeterministic(t *testing.T) {
	gc := game.DefaultConfig()
	gc.Seed = 7
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot := config.BotConfig{Interval: 3 * time.Second, Quantity: 2}

	a, _, err := runSimulation(gc, bot, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _, err := runSimulation(gc, bot, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Capital != b.Capital || len(a.Holdings) != len(b.Holdings) {
		t.Errorf("same seed diverged: %d/%d vs %d/%d", a.Capital, len(a.Holdings), b.Capital, len(b.Holdings))
	}
	if !a.Result.Report.AIROI.Equal(b.Result.Report.AIROI) {
		t.Errorf("AI ROI diverged: %s vs %s", a.Result.Report.AIROI, b.Result.Report.AIROI)
	}
}

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	gc := game.DefaultConfig()
	gc.Seed = 1
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, stats, err := runSimulation(gc, config.BotConfig{Interval: 5 * time.Second, Quantity: 1}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, st, stats)
	out := buf.String()
	for _, want := range []string{"Game over (medium)", "player", "ai", "invested"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report:\n%s", want, out)
		}
	}
	if st.Capital > portfolio.DefaultCapital+st.Result.Summary.Realized {
		t.Errorf("capital %d exceeds start plus realized", st.Capital)
	}
}
