package main

import (
	"fmt"
	"time"

	config "github.com/maheshrc27/listing-api/configs"
	"github.com/maheshrc27/listing-api/internal/database"
	job "github.com/maheshrc27/listing-api/internal/jobs"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/spf13/cobra"
)

func newSweepCommand(cfg *config.Config) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark posts stuck in PENDING_AI as FAILED",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cmd.Context(), cfg.PostgresURI)
			if err != nil {
				return err
			}
			defer closeDB(db)

			n, err := job.NewStalePendingJob(repository.NewPostRepository(db), timeout).Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d post(s) marked FAILED\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "older-than", cfg.PendingAITimeout, "age of a PENDING_AI post before it is failed")
	return cmd
}
