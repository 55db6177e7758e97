package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Defaults applied when a new task omits the field.
const (
	DefaultEstimatedMinutes = 25
	DefaultCategory         = "general"
)

// TaskSource identifies where a task came from
type TaskSource string

const (
	TaskSourceManual   TaskSource = "manual"
	TaskSourceCalendar TaskSource = "calendar"
	TaskSourceEmail    TaskSource = "email"
)

// Recurrence describes how a task repeats after completion
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Task represents a single task on a user's list
type Task struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Category         string     `json:"category"`
	Source           TaskSource `json:"source"`
	SourceID         *string    `json:"source_id,omitempty"`
	PriorityScore    int        `json:"priority_score"`
	PriorityReason   string     `json:"priority_reason"`
	Completed        bool       `json:"completed"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	CreatedAt        time.Time  `json:"created_at"`
	ScheduledDate    string     `json:"scheduled_date"`
	RolloverCount    int        `json:"rollover_count"`
	Recurrence       Recurrence `json:"recurrence"`
}

// NextScheduledDate returns the scheduled date advanced by one recurrence
// interval, or empty when the task does not recur.
func (t *Task) NextScheduledDate() string {
	if t.Recurrence == RecurrenceNone || t.Recurrence == "" {
		return ""
	}
	base, err := time.Parse(DateLayout, t.ScheduledDate)
	if err != nil {
		base = time.Now().UTC()
	}
	switch t.Recurrence {
	case RecurrenceDaily:
		base = base.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		base = base.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		base = base.AddDate(0, 1, 0)
	}
	return base.Format(DateLayout)
}
