package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
)

// Assembler produces the read side of daily planning: today's task list and
// the daily stats summary.
type Assembler struct {
	tasks    database.TaskStore
	plans    database.PlanStore
	sessions database.SessionStore
	settings database.SettingsStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssembler creates an assembler.
func NewAssembler(tasks database.TaskStore, plans database.PlanStore, sessions database.SessionStore, settings database.SettingsStore, logger *zap.Logger) *Assembler {
	return &Assembler{
		tasks:    tasks,
		plans:    plans,
		sessions: sessions,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// TodayView is the resolved daily plan returned to clients.
type TodayView struct {
	Date    string         `json:"date"`
	Tasks   []*models.Task `json:"tasks"`
	Reason  string         `json:"reason"`
	Planned bool           `json:"planned"`
}

// Today returns the stored plan for today with its tasks rehydrated in plan
// order, dropping tasks completed or deleted since the plan was made. When no
// plan exists, it returns a fallback list capped at the daily limit.
func (a *Assembler) Today(ctx context.Context) (*TodayView, error) {
	today := dateOf(a.now())

	plan, err := a.plans.GetByDate(ctx, today)
	if err != nil {
		return nil, err
	}

	if plan != nil {
		tasks, err := a.resolvePlan(ctx, plan)
		if err != nil {
			return nil, err
		}
		return &TodayView{
			Date:    today,
			Tasks:   tasks,
			Reason:  plan.PrioritizationReason,
			Planned: true,
		}, nil
	}

	settings, err := a.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := a.tasks.ListIncompleteDueBy(ctx, today)
	if err != nil {
		return nil, err
	}
	sortFallback(candidates)
	tasks := capTasks(candidates, settings.DailyTaskLimit)

	return &TodayView{
		Date:    today,
		Tasks:   tasks,
		Reason:  FallbackReason,
		Planned: false,
	}, nil
}

// resolvePlan loads the plan's still-open tasks preserving the stored order.
func (a *Assembler) resolvePlan(ctx context.Context, plan *models.DailyPlan) ([]*models.Task, error) {
	if len(plan.TaskIDs) == 0 {
		return []*models.Task{}, nil
	}

	open, err := a.tasks.ListOpenByIDs(ctx, plan.TaskIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Task, len(open))
	for _, t := range open {
		byID[t.ID] = t
	}

	ordered := make([]*models.Task, 0, len(plan.TaskIDs))
	for _, id := range plan.TaskIDs {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// StatsView summarizes today's activity.
type StatsView struct {
	Date           string `json:"date"`
	CompletedToday int    `json:"completed_today"`
	PendingTotal   int    `json:"pending_total"`
	FocusMinutes   int    `json:"focus_minutes"`
	Pomodoros      int    `json:"pomodoros"`
}

// Stats aggregates today's completions, open task count, and focus time from
// completed work sessions.
func (a *Assembler) Stats(ctx context.Context) (*StatsView, error) {
	today := dateOf(a.now())
	start, end, err := dayBounds(today)
	if err != nil {
		return nil, err
	}

	completed, err := a.tasks.ListCompletedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	pending, err := a.tasks.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := a.sessions.ListCompletedWorkBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	focusSeconds := 0
	for _, s := range sessions {
		focusSeconds += s.DurationSeconds
	}

	return &StatsView{
		Date:           today,
		CompletedToday: len(completed),
		PendingTotal:   pending,
		FocusMinutes:   focusSeconds / 60,
		Pomodoros:      len(sessions),
	}, nil
}
