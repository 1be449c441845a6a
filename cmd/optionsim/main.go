package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zappabad/optionsim/internal/config"
	"github.com/zappabad/optionsim/internal/game"
)

type rootFlags struct {
	configPath string
	difficulty string
	seed       int64
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:          "optionsim",
		Short:        "Call option trading simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ./optionsim.yaml)")
	root.PersistentFlags().StringVarP(&flags.difficulty, "difficulty", "d", "", "high, medium or low")
	root.PersistentFlags().Int64Var(&flags.seed, "seed", 0, "random seed, 0 picks one from the clock")

	root.AddCommand(
		newPlayCmd(flags),
		newServeCmd(flags),
		newSimulateCmd(flags),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// load reads the config file and applies command-line overrides.
func (f *rootFlags) load() (*config.Config, game.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, game.Config{}, err
	}
	if f.difficulty != "" {
		cfg.Difficulty = f.difficulty
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	gc, err := cfg.GameConfig()
	if err != nil {
		return nil, game.Config{}, err
	}
	return cfg, gc, nil
}
