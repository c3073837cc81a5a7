package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("list", false, "List the embedded migrations without applying them")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("migrate")

	if list, _ := cmd.Flags().GetBool("list"); list {
		names, err := database.Migrations()
		if err != nil {
			return err
		}

		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}

		return nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(cmd.Context(), db)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		log.Info().Msg("database is up to date")
		return nil
	}

	log.Info().Strs("applied", applied).Msg("migrations applied")

	return nil
}
