package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyPlan holds the ordered task selection for a single calendar date.
// There is at most one plan per date; re-running prioritization overwrites it.
type DailyPlan struct {
	ID                   uuid.UUID   `json:"id"`
	Date                 string      `json:"date"`
	TaskIDs              []uuid.UUID `json:"task_ids"`
	PrioritizationReason string      `json:"prioritization_reason"`
	CreatedAt            time.Time   `json:"created_at"`
}
