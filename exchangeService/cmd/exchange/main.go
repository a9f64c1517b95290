package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridcert/exchange/exchangeService/internal/application/exchange"
	"github.com/gridcert/exchange/exchangeService/migrations"
	"github.com/gridcert/exchange/shared/config"
	"github.com/gridcert/exchange/shared/infra/db"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "exchange",
		Short:         "Energy certificate exchange",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
	)

	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, health server and background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			exchange.Run(ctx, *cfg)
			return nil
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}
			if cfg.DBURI == "" {
				return errors.New("migrate: db_uri is not configured")
			}

			ctx := cmd.Context()

			pool, err := db.SetupDB(ctx, cfg.DBURI, migrations.Migrations)
			if err != nil {
				return err
			}
			defer pool.Close()

			version, err := db.Version(ctx, pool, migrations.Migrations)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}
