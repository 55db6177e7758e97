package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/focusflow/focusflow/internal/models"
)

// TaskStore defines the task persistence operations consumed by the planner
// and handlers. The interface enables mock implementations in tests.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	CreateImported(ctx context.Context, task *models.Task) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, includeCompleted bool, date string) ([]*models.Task, error)
	ListIncompleteDueBy(ctx context.Context, date string) ([]*models.Task, error)
	ListIncompleteBefore(ctx context.Context, date string) ([]*models.Task, error)
	ListOpenByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, newDate string) error
	SetPriority(ctx context.Context, id uuid.UUID, score int, reason string) error
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error
	AddTimeSpent(ctx context.Context, id uuid.UUID, seconds int) error
	CountPending(ctx context.Context) (int, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
}

// SessionStore defines pomodoro session persistence operations.
type SessionStore interface {
	Create(ctx context.Context, session *models.PomodoroSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PomodoroSession, error)
	GetOpenByTask(ctx context.Context, taskID uuid.UUID) (*models.PomodoroSession, error)
	Close(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int, completed bool) error
	ListCompletedWorkBetween(ctx context.Context, from, to time.Time) ([]*models.PomodoroSession, error)
}

// PlanStore defines daily plan persistence operations.
type PlanStore interface {
	Upsert(ctx context.Context, plan *models.DailyPlan) error
	GetByDate(ctx context.Context, date string) (*models.DailyPlan, error)
}

// SettingsStore defines settings persistence operations.
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
	SaveGoogleConnection(ctx context.Context, tokenJSON, email string) error
	ClearGoogleConnection(ctx context.Context) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskStore     = (*TaskRepository)(nil)
	_ SessionStore  = (*SessionRepository)(nil)
	_ PlanStore     = (*DailyPlanRepository)(nil)
	_ SettingsStore = (*SettingsRepository)(nil)
)
