package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/crm/internal/auth/app"
)

// Global flags available to all subcommands.
var databaseURL string

// NewRootCmd creates the root command for the auth CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "CRM authentication service",
		Long: `Company registration, login, invitations and role-gated routes for the CRM.
Configuration comes from the environment; flags override it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "",
		"database URL (overrides DATABASE_URL): sqlite://path or postgres://...")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())

	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() app.Config {
	cfg := app.LoadConfig()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	return cfg
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Migrations are applied on startup and the
expired invitation sweeper runs in the background until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			if port != 0 {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return oops.Code("STARTUP_FAILED").With("operation", "initialize application").Wrap(err)
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
	return cmd
}
