package main

import (
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-payments/internal/config"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded postgres schema migrations",
		Long: `Apply the embedded postgres schema migrations to DATABASE_URL.

Examples:
  minishop-payments migrate
  minishop-payments migrate --steps -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("migrate: DATABASE_URL is not set")
			}
			version, err := postgres.Migrate(cfg.DatabaseURL, steps)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "migrate by N steps (negative rolls back); 0 applies all")
	return cmd
}
