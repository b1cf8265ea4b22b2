//go:build !(js && wasm)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/xtermjs/config"
	"github.com/lixenwraith/xtermjs/demo"
	"github.com/lixenwraith/xtermjs/remote"
	"github.com/lixenwraith/xtermjs/tty"
)

func newServeCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo to xterm.js pages over WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if err := initLogging(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address, overrides server.address")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	slog := log.With().Str("state", "serve").Logger()

	srv := remote.NewServer(cfg.RemoteConfig(), sessionHandler(cfg), cfg.BackendOptions()...)
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info().Int("sessions", srv.SessionCount()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}

// sessionHandler runs one demo per connected page
func sessionHandler(cfg *config.Config) remote.Handler {
	return func(ctx context.Context, sess *remote.Session) error {
		t := tty.New(sess.Backend, cfg.Terminal.InputQueue)
		screen, err := tty.NewScreen(t, cfg.Terminal.TermName)
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("screen init: %w", err)
		}
		defer screen.Fini()

		return demo.New(screen).Run(ctx)
	}
}
