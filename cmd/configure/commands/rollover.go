package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/planner"
)

// NewRolloverCmd creates the rollover maintenance command.
func NewRolloverCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Roll incomplete tasks forward",
		Long:  "Move incomplete tasks scheduled before the given date (default today) onto it. Useful from cron when auto rollover is disabled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			rollover := planner.NewRollover(database.NewTaskRepository(db), zap.NewNop())
			result, err := rollover.Run(context.Background(), date)
			if err != nil {
				return fmt.Errorf("run rollover: %w", err)
			}

			fmt.Printf("Rolled %d task(s) onto %s", result.Moved, result.Date)
			if result.Failed > 0 {
				fmt.Printf(" (%d failed)", result.Failed)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target date in YYYY-MM-DD form (default today)")

	return cmd
}
