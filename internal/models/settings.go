package models

// SettingsID is the fixed identifier of the singleton settings record.
const SettingsID = "user_settings"

// Settings is the singleton configuration record. The Google token is kept
// out of JSON responses; it only travels between the store and the OAuth
// client.
type Settings struct {
	ID                      string `json:"id"`
	PomodoroWorkMinutes     int    `json:"pomodoro_work_minutes"`
	PomodoroShortBreak      int    `json:"pomodoro_short_break"`
	PomodoroLongBreak       int    `json:"pomodoro_long_break"`
	DailyTaskLimit          int    `json:"daily_task_limit"`
	AutoRollover            bool   `json:"auto_rollover"`
	DarkMode                bool   `json:"dark_mode"`
	GoogleCalendarConnected bool   `json:"google_calendar_connected"`
	GmailConnected          bool   `json:"gmail_connected"`
	GoogleEmail             string `json:"google_email,omitempty"`
	GoogleToken             string `json:"-"`
}

// DefaultSettings returns the settings record created on first access.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                  SettingsID,
		PomodoroWorkMinutes: 25,
		PomodoroShortBreak:  5,
		PomodoroLongBreak:   15,
		DailyTaskLimit:      4,
		AutoRollover:        true,
	}
}
