//go:build unix

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/xtermjs/ansi"
	"github.com/lixenwraith/xtermjs/backend"
	"github.com/lixenwraith/xtermjs/config"
	"github.com/lixenwraith/xtermjs/demo"
	"github.com/lixenwraith/xtermjs/logger"
	"github.com/lixenwraith/xtermjs/tty"
	"github.com/lixenwraith/xtermjs/xterm"
)

func init() {
	rootCmd.AddCommand(newLocalCmd())
}

func newLocalCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run the demo in this terminal through the xterm backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// The terminal is in raw mode; logs go to a file or nowhere
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := logger.InitWriter(out, cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return runLocal(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	return cmd
}

func runLocal(ctx context.Context, cfg *config.Config) error {
	term := xterm.NewLocal()
	if err := term.Start(); err != nil {
		return err
	}

	// Restore the host terminal even if the demo crashes
	defer func() {
		if r := recover(); r != nil {
			_ = term.Close()
			_, _ = io.WriteString(os.Stdout, ansi.AltScreenExit+ansi.CursorShow+ansi.Reset)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mxtermjs crashed: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	be := backend.New(term, cfg.BackendOptions()...)
	t := tty.New(be, cfg.Terminal.InputQueue)
	screen, err := tty.NewScreen(t, cfg.Terminal.TermName)
	if err != nil {
		_ = term.Close()
		return err
	}
	if err := screen.Init(); err != nil {
		_ = term.Close()
		return fmt.Errorf("screen init: %w", err)
	}

	runErr := demo.New(screen).Run(ctx)

	screen.Fini()
	closeErr := be.Close()
	if err := term.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if runErr != nil {
		return runErr
	}
	return closeErr
}
