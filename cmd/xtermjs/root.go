//go:build !(js && wasm)

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/xtermjs/config"
	"github.com/lixenwraith/xtermjs/logger"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

var errorLabel = color.New(color.FgRed)

var rootCmd = &cobra.Command{
	Use:   "xtermjs [command] [flags]",
	Short: "Run tcell programs inside xterm.js",
	Long: `xtermjs drives xterm.js terminal widgets from Go through a buffered
backend that delivers each frame as a single write.

Examples:
  # Serve the demo to browsers on the configured address
  xtermjs serve --config xtermjs.toml

  # Run the demo in this terminal through the same backend
  xtermjs local`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig reads --config and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// initLogging configures the global logger from cfg
func initLogging(cfg *config.Config) error {
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return nil
}

var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "xtermjs "+version)
		},
	}
}
