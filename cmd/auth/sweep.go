package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/crm/internal/auth/app"
)

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired invitations once",
		Long: `Run a single housekeeping pass, deleting every invitation past its
expiry. Useful from cron when the server's own sweeper is not running.`,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	n, err := app.Sweep(cmd.Context(), cfg, app.NewLogger(cfg))
	if err != nil {
		return oops.Code("SWEEP_FAILED").With("operation", "sweep invitations").Wrap(err)
	}

	cmd.Printf("Deleted %d expired invitations\n", n)
	return nil
}
