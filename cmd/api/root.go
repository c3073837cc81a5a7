package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/buildestimate/internal/config"
	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
)

var version = "dev"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "buildestimate",
	Short: "Estimates and invoices for building-material traders",
	Long: `buildestimate runs the trading API and its maintenance tasks.

Configuration is read from the environment (and a .env file when present).
See internal/config for the full list of variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}

		if err := logger.Setup(logger.Config{Level: loaded.Log.Level, Format: loaded.Log.Format}); err != nil {
			return fmt.Errorf("setting up logger: %w", err)
		}

		cfg = loaded

		return nil
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
