package main

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire sent estimates past their validity",
	Long: `Expiry is evaluated on demand: estimates are also expired when a
customer or trader checks them. This command sweeps the rest, and with
--invoices marks unpaid invoices past their due date as overdue.

Run it from cron or a scheduler; nothing in the API does this on a timer.`,
	RunE: runExpire,
}

func init() {
	rootCmd.AddCommand(expireCmd)

	expireCmd.Flags().Bool("invoices", true, "Also recompute overdue invoices")
}

func runExpire(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("expire")
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	expired, err := a.estimates.ExpireOverdue(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("estimates", expired).Msg("estimates expired")

	if withInvoices, _ := cmd.Flags().GetBool("invoices"); !withInvoices {
		return nil
	}

	overdue, err := a.invoices.MarkOverdue(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("invoices", overdue).Msg("invoices marked overdue")

	return nil
}
