package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionType represents the kind of pomodoro interval
type SessionType string

const (
	SessionTypeWork       SessionType = "work"
	SessionTypeShortBreak SessionType = "short_break"
	SessionTypeLongBreak  SessionType = "long_break"
)

// PomodoroSession records a single timed work or break interval against a task.
// EndedAt is nil while the session is open.
type PomodoroSession struct {
	ID              uuid.UUID   `json:"id"`
	TaskID          uuid.UUID   `json:"task_id"`
	SessionType     SessionType `json:"session_type"`
	StartedAt       time.Time   `json:"started_at"`
	EndedAt         *time.Time  `json:"ended_at,omitempty"`
	DurationSeconds int         `json:"duration_seconds"`
	Completed       bool        `json:"completed"`
}

// Open reports whether the session has not been closed yet.
func (s *PomodoroSession) Open() bool {
	return s.EndedAt == nil
}
