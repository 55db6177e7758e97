package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
)

// Rollover moves unfinished tasks from past days forward and spawns the next
// occurrence of recurring tasks when they complete.
type Rollover struct {
	tasks  database.TaskStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRollover creates a rollover component.
func NewRollover(tasks database.TaskStore, logger *zap.Logger) *Rollover {
	return &Rollover{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// RolloverResult reports what a rollover run did.
type RolloverResult struct {
	Date   string `json:"date"`
	Moved  int    `json:"moved"`
	Failed int    `json:"failed"`
}

// Run reschedules every incomplete task dated before asOf onto asOf and
// increments each task's rollover count. An empty asOf means today. Failures
// on individual tasks are logged and counted without aborting the run;
// rerunning is safe because moved tasks no longer match the cutoff.
func (r *Rollover) Run(ctx context.Context, asOf string) (*RolloverResult, error) {
	if asOf == "" {
		asOf = dateOf(r.now())
	}
	if _, err := time.Parse(models.DateLayout, asOf); err != nil {
		return nil, err
	}

	stale, err := r.tasks.ListIncompleteBefore(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &RolloverResult{Date: asOf}
	for _, task := range stale {
		if err := r.tasks.Reschedule(ctx, task.ID, asOf); err != nil {
			result.Failed++
			r.logger.Warn("task_rollover_failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Moved++
	}

	r.logger.Info("rollover_completed",
		zap.String("date", asOf),
		zap.Int("moved", result.Moved),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// SpawnRecurring creates the next occurrence of a recurring task that was
// just completed. Returns nil for non-recurring tasks. The new task starts
// fresh: no priority, no time spent, rollover count reset.
func (r *Rollover) SpawnRecurring(ctx context.Context, task *models.Task) (*models.Task, error) {
	nextDate := task.NextScheduledDate()
	if nextDate == "" {
		return nil, nil
	}

	next := &models.Task{
		ID:               uuid.New(),
		Title:            task.Title,
		Description:      task.Description,
		Deadline:         shiftDeadline(task),
		EstimatedMinutes: task.EstimatedMinutes,
		Category:         task.Category,
		Source:           task.Source,
		CreatedAt:        r.now().UTC(),
		ScheduledDate:    nextDate,
		Recurrence:       task.Recurrence,
	}

	if err := r.tasks.Create(ctx, next); err != nil {
		return nil, err
	}

	r.logger.Info("recurring_task_spawned",
		zap.String("task_id", task.ID.String()),
		zap.String("next_task_id", next.ID.String()),
		zap.String("scheduled_date", nextDate),
	)

	return next, nil
}

// shiftDeadline advances the deadline by one recurrence interval so the new
// occurrence keeps the same lead time.
func shiftDeadline(task *models.Task) *time.Time {
	if task.Deadline == nil {
		return nil
	}
	var next time.Time
	switch task.Recurrence {
	case models.RecurrenceDaily:
		next = task.Deadline.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		next = task.Deadline.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		next = task.Deadline.AddDate(0, 1, 0)
	default:
		return nil
	}
	return &next
}
