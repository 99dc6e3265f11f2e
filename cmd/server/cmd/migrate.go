package cmd

import (
	"fmt"
	"os"

	"github.com/EventLink/server/internal/config"
	"github.com/EventLink/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

type migrateOptions struct {
	databaseURL string
	steps       int
}

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Manage the database schema using the migrations embedded in the binary.

The database URL comes from --database-url or DATABASE_URL.

Examples:
  server migrate up
  server migrate down --steps 1`,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := opts.resolveURL()
			if err != nil {
				return err
			}
			logger := config.NewLogger(config.LoggingConfig{Level: flags.logLevel, Format: flags.logFormat})
			if err := postgres.MigrateUp(url); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			url, err := opts.resolveURL()
			if err != nil {
				return err
			}
			logger := config.NewLogger(config.LoggingConfig{Level: flags.logLevel, Format: flags.logFormat})
			if err := postgres.MigrateDown(url, opts.steps); err != nil {
				return err
			}
			logger.Info().Int("steps", opts.steps).Msg("migrations rolled back")
			return nil
		},
	}
	down.Flags().IntVar(&opts.steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func (o *migrateOptions) resolveURL() (string, error) {
	if o.databaseURL != "" {
		return o.databaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("DATABASE_URL is required (set the env var or pass --database-url)")
}
