package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zappabad/optionsim/internal/config"
	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/logging"
	"github.com/zappabad/optionsim/internal/schedule"
	"github.com/zappabad/optionsim/internal/trader"
	"github.com/zappabad/optionsim/internal/trader/runner"
	"github.com/zappabad/optionsim/internal/trader/strategy"
)

// botStats counts what the bot did over a game.
type botStats struct {
	Bought    int
	Exercised int
	Errors    int
	LastError string
}

func newSimulateCmd(flags *rootFlags) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one game headless with the bot and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gc, err := flags.load()
			if err != nil {
				return err
			}
			var fallback io.Writer = io.Discard
			if verbose {
				fallback = os.Stderr
			}
			logger, closer := logging.New(cfg.Log, fallback)
			defer closer.Close()

			st, stats, err := runSimulation(gc, cfg.Bot, logger)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), st, stats)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log game events to stderr")
	return cmd
}

// runSimulation plays a full game on virtual time. The bot trades on its own
// interval for the whole game and the final state is returned.
func runSimulation(gc game.Config, bot config.BotConfig, logger *slog.Logger) (game.State, botStats, error) {
	sched := schedule.NewManualScheduler(time.Now())
	g := game.NewGame(gc, sched, logger)
	defer g.Close()

	r := runner.NewRunner(
		runner.Config{TickInterval: bot.Interval, EventBuffer: 4096, DropEvents: true},
		strategy.NewFollower(bot.Quantity),
		g, g.Ledger, g, sched,
	)
	defer r.Close()

	if err := g.Start(gc.Difficulty); err != nil {
		return game.State{}, botStats{}, err
	}

	// Step a second at a time so the event buffer is drained as it fills.
	var stats botStats
	for left := gc.Countdown + gc.Duration; left > 0 && g.Phase() != game.PhaseResult; left-- {
		sched.Advance(time.Second)
		drain(r.Events(), &stats)
	}

	st := g.State()
	if st.Result == nil {
		return st, stats, errors.New("game ended without a result")
	}
	return st, stats, nil
}

func drain(events <-chan trader.TraderEvent, stats *botStats) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case trader.TraderEventBought:
				stats.Bought++
			case trader.TraderEventExercised:
				stats.Exercised++
			case trader.TraderEventError:
				stats.Errors++
				stats.LastError = ev.Message
			}
		default:
			return
		}
	}
}
