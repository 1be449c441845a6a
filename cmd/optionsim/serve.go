package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zappabad/optionsim/internal/api"
	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/logging"
	"github.com/zappabad/optionsim/internal/schedule"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP and websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gc, err := flags.load()
			if err != nil {
				return err
			}
			logger, closer := logging.New(cfg.Log, os.Stderr)
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g := game.NewGame(gc, schedule.NewTickerScheduler(), logger)
			defer g.Close()
			s := api.NewServer(g, api.Config{}, logger)
			defer s.Close()

			srv := s.HTTPServer(cfg.HTTP.Addr)
			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", cfg.HTTP.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("listen: %w", err)
			case <-ctx.Done():
			}

			logger.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}
}
