package main

import (
	"log/slog"

	config "github.com/maheshrc27/listing-api/configs"
	"github.com/maheshrc27/listing-api/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	var direction string
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Example: `  listing-api migrate
  listing-api migrate --direction down --steps 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cmd.Context(), cfg.PostgresURI)
			if err != nil {
				return err
			}
			defer closeDB(db)

			m, err := database.NewMigrator(db)
			if err != nil {
				return err
			}
			if err := database.Apply(m, direction, steps); err != nil {
				return err
			}

			version, dirty, err := m.Version()
			if err != nil {
				slog.Info("migrations applied", "direction", direction)
				return nil
			}
			slog.Info("migrations applied", "direction", direction, "version", version, "dirty", dirty)
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction (up|down)")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps, 0 applies all")
	return cmd
}
