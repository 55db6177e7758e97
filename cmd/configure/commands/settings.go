package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/database"
)

// NewSettingsCmd creates the settings command with list and set subcommands.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage application settings",
		Long:  "List or update pomodoro and planning settings. Stored in database.",
	}
	cmd.AddCommand(newSettingsListCmd())
	cmd.AddCommand(newSettingsSetCmd())
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openSettingsRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			settings, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get settings: %w", err)
			}

			fmt.Println("Current settings:")
			fmt.Printf("  Pomodoro work minutes: %d\n", settings.PomodoroWorkMinutes)
			fmt.Printf("  Pomodoro short break:  %d\n", settings.PomodoroShortBreak)
			fmt.Printf("  Pomodoro long break:   %d\n", settings.PomodoroLongBreak)
			fmt.Printf("  Daily task limit:      %d\n", settings.DailyTaskLimit)
			fmt.Printf("  Auto rollover:         %t\n", settings.AutoRollover)
			fmt.Printf("  Dark mode:             %t\n", settings.DarkMode)
			fmt.Printf("  Google Calendar:       connected=%t\n", settings.GoogleCalendarConnected)
			fmt.Printf("  Gmail:                 connected=%t\n", settings.GmailConnected)
			if settings.GoogleEmail != "" {
				fmt.Printf("  Google account:        %s\n", settings.GoogleEmail)
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		workMinutes int
		shortBreak  int
		longBreak   int
		dailyLimit  int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings",
		Long:  "Update one or more settings fields. Unset flags keep their current values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openSettingsRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()
			settings, err := repo.Get(ctx)
			if err != nil {
				return fmt.Errorf("get settings: %w", err)
			}

			changed := false
			if cmd.Flags().Changed("work-minutes") {
				if workMinutes < 1 || workMinutes > 120 {
					return fmt.Errorf("--work-minutes must be between 1 and 120")
				}
				settings.PomodoroWorkMinutes = workMinutes
				changed = true
			}
			if cmd.Flags().Changed("short-break") {
				if shortBreak < 1 || shortBreak > 60 {
					return fmt.Errorf("--short-break must be between 1 and 60")
				}
				settings.PomodoroShortBreak = shortBreak
				changed = true
			}
			if cmd.Flags().Changed("long-break") {
				if longBreak < 1 || longBreak > 120 {
					return fmt.Errorf("--long-break must be between 1 and 120")
				}
				settings.PomodoroLongBreak = longBreak
				changed = true
			}
			if cmd.Flags().Changed("daily-limit") {
				if dailyLimit < 1 || dailyLimit > 20 {
					return fmt.Errorf("--daily-limit must be between 1 and 20")
				}
				settings.DailyTaskLimit = dailyLimit
				changed = true
			}
			if cmd.Flags().Changed("auto-rollover") {
				value, err := cmd.Flags().GetBool("auto-rollover")
				if err != nil {
					return err
				}
				settings.AutoRollover = value
				changed = true
			}

			if !changed {
				return fmt.Errorf("no flags provided; nothing to update")
			}

			if err := repo.Save(ctx, settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			fmt.Println("Settings updated.")
			return nil
		},
	}

	cmd.Flags().IntVar(&workMinutes, "work-minutes", 0, "Pomodoro work duration in minutes (1-120)")
	cmd.Flags().IntVar(&shortBreak, "short-break", 0, "Short break duration in minutes (1-60)")
	cmd.Flags().IntVar(&longBreak, "long-break", 0, "Long break duration in minutes (1-120)")
	cmd.Flags().IntVar(&dailyLimit, "daily-limit", 0, "Daily plan task limit (1-20)")
	cmd.Flags().Bool("auto-rollover", true, "Automatically roll incomplete tasks forward")

	return cmd
}

func openSettingsRepo() (*database.SettingsRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	return database.NewSettingsRepository(db), closeDB, nil
}
