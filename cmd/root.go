package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kamusis/axon-context/internal/config"
	"github.com/spf13/cobra"
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:          "axon",
	Short:        "Axon — recommend skills, agents, commands and rules for a request",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Axon ranks the entries of a knowledge hub (skills, agents, commands and
rules) against a free-form request so a prompt assembler can attach the
relevant references before the request reaches an AI coding assistant.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Print debug information")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads axon.yaml with the hint every command shows on failure.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'axon init' first.", err)
	}
	return cfg, nil
}

// newLogger returns a stderr text logger. --debug wins over log_level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg != nil && cfg.LogLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err == nil {
			level = l
		}
	}
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// commandContext falls back to Background when a command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
