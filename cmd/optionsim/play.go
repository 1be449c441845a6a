package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/logging"
	"github.com/zappabad/optionsim/internal/schedule"
	"github.com/zappabad/optionsim/tui"
)

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gc, err := flags.load()
			if err != nil {
				return err
			}

			// The terminal belongs to the UI; logs only go to log.file.
			logger, closer := logging.New(cfg.Log, io.Discard)
			defer closer.Close()

			g := game.NewGame(gc, schedule.NewTickerScheduler(), logger)
			defer g.Close()
			g.News.SetCue(tui.BellCue(os.Stderr))

			p := tea.NewProgram(tui.NewModel(g), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}
}
