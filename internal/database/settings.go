package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/focusflow/focusflow/internal/models"
)

// SettingsRepository handles the singleton settings record
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, pomodoro_work_minutes, pomodoro_short_break, pomodoro_long_break,
	daily_task_limit, auto_rollover, dark_mode, google_calendar_connected, gmail_connected,
	google_email, google_token`

func scanSettings(row rowScanner) (*models.Settings, error) {
	settings := &models.Settings{}
	err := row.Scan(
		&settings.ID,
		&settings.PomodoroWorkMinutes,
		&settings.PomodoroShortBreak,
		&settings.PomodoroLongBreak,
		&settings.DailyTaskLimit,
		&settings.AutoRollover,
		&settings.DarkMode,
		&settings.GoogleCalendarConnected,
		&settings.GmailConnected,
		&settings.GoogleEmail,
		&settings.GoogleToken,
	)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Get retrieves the settings record, creating defaults on first access.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings WHERE id = $1`

	settings, err := scanSettings(r.db.QueryRowContext(ctx, query, models.SettingsID))
	if err == sql.ErrNoRows {
		defaults := models.DefaultSettings()
		if err := r.save(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// Save persists the full settings record.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	return r.save(ctx, settings)
}

func (r *SettingsRepository) save(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET pomodoro_work_minutes = EXCLUDED.pomodoro_work_minutes,
			pomodoro_short_break = EXCLUDED.pomodoro_short_break,
			pomodoro_long_break = EXCLUDED.pomodoro_long_break,
			daily_task_limit = EXCLUDED.daily_task_limit,
			auto_rollover = EXCLUDED.auto_rollover,
			dark_mode = EXCLUDED.dark_mode,
			google_calendar_connected = EXCLUDED.google_calendar_connected,
			gmail_connected = EXCLUDED.gmail_connected,
			google_email = EXCLUDED.google_email,
			google_token = EXCLUDED.google_token
	`

	_, err := r.db.ExecContext(ctx, query,
		settings.ID,
		settings.PomodoroWorkMinutes,
		settings.PomodoroShortBreak,
		settings.PomodoroLongBreak,
		settings.DailyTaskLimit,
		settings.AutoRollover,
		settings.DarkMode,
		settings.GoogleCalendarConnected,
		settings.GmailConnected,
		settings.GoogleEmail,
		settings.GoogleToken,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// SaveGoogleConnection stores an OAuth token and flips the connected flags.
func (r *SettingsRepository) SaveGoogleConnection(ctx context.Context, tokenJSON, email string) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}

	settings.GoogleToken = tokenJSON
	settings.GoogleEmail = email
	settings.GoogleCalendarConnected = true
	settings.GmailConnected = true

	return r.save(ctx, settings)
}

// ClearGoogleConnection drops the stored token and connected flags.
func (r *SettingsRepository) ClearGoogleConnection(ctx context.Context) error {
	settings, err := r.Get(ctx)
	if err != nil {
		return err
	}

	settings.GoogleToken = ""
	settings.GoogleEmail = ""
	settings.GoogleCalendarConnected = false
	settings.GmailConnected = false

	return r.save(ctx, settings)
}
