package main

import (
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/spf13/cobra"
)

const defaultMigrationsSource = "file://db/migrations"

var (
	migrateSource string
	migrateSteps  int
)

var migrateCmd = structured(&cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations (users, app layouts, visits, sessions).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		m, err := migrate.New(migrateSource, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()

		if migrateSteps != 0 {
			err = m.Steps(migrateSteps)
		} else {
			err = m.Up()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no changes to apply")
			return nil
		}
		if err != nil {
			return err
		}

		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		slog.Info("migrations applied", "version", version, "dirty", dirty)
		return nil
	},
})

func init() {
	migrateCmd.Flags().StringVar(&migrateSource, "source", defaultMigrationsSource, "Migration source URL")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Apply N migrations (negative rolls back); 0 applies all pending")
}
