package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
)

var (
	// ErrInvalidDuration is returned for negative or absurdly long durations.
	ErrInvalidDuration = fmt.Errorf("duration must be between 0 and %d seconds", MaxSessionSeconds)
	// ErrSessionClosed is returned when closing an already-closed session.
	ErrSessionClosed = errors.New("session already closed")
)

// Tracker manages pomodoro sessions. A task has at most one open session;
// starting a new one closes the previous session as abandoned.
type Tracker struct {
	tasks    database.TaskStore
	sessions database.SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(tasks database.TaskStore, sessions database.SessionStore, logger *zap.Logger) *Tracker {
	return &Tracker{
		tasks:    tasks,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Start opens a new session against a task. An existing open session for the
// task is closed as abandoned first. Work sessions stamp the task's first
// started_at.
func (t *Tracker) Start(ctx context.Context, taskID uuid.UUID, sessionType models.SessionType) (*models.PomodoroSession, error) {
	task, err := t.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()

	open, err := t.sessions.GetOpenByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		elapsed := int(now.Sub(open.StartedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		if err := t.sessions.Close(ctx, open.ID, now, elapsed, false); err != nil {
			return nil, err
		}
		t.logger.Info("session_abandoned",
			zap.String("session_id", open.ID.String()),
			zap.String("task_id", taskID.String()),
		)
	}

	session := &models.PomodoroSession{
		ID:          uuid.New(),
		TaskID:      task.ID,
		SessionType: sessionType,
		StartedAt:   now,
	}
	if err := t.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	if sessionType == models.SessionTypeWork {
		if err := t.tasks.MarkStarted(ctx, task.ID, now); err != nil {
			t.logger.Warn("mark_started_failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
		}
	}

	return session, nil
}

// Complete closes a session as finished with the client-reported duration.
// Completed work sessions add their duration to the task's time spent.
func (t *Tracker) Complete(ctx context.Context, sessionID uuid.UUID, durationSeconds int) (*models.PomodoroSession, error) {
	if durationSeconds < 0 || durationSeconds > MaxSessionSeconds {
		return nil, ErrInvalidDuration
	}

	session, err := t.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, ErrSessionClosed
	}

	now := t.now().UTC()
	if err := t.sessions.Close(ctx, session.ID, now, durationSeconds, true); err != nil {
		return nil, err
	}

	if session.SessionType == models.SessionTypeWork && durationSeconds > 0 {
		if err := t.tasks.AddTimeSpent(ctx, session.TaskID, durationSeconds); err != nil {
			return nil, err
		}
	}

	session.EndedAt = &now
	session.DurationSeconds = durationSeconds
	session.Completed = true
	return session, nil
}

// Stop closes a session early without counting it as a completed pomodoro.
// The elapsed wall-clock time is recorded but not added to the task.
func (t *Tracker) Stop(ctx context.Context, sessionID uuid.UUID) (*models.PomodoroSession, error) {
	session, err := t.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, ErrSessionClosed
	}

	now := t.now().UTC()
	elapsed := int(now.Sub(session.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > MaxSessionSeconds {
		elapsed = MaxSessionSeconds
	}

	if err := t.sessions.Close(ctx, session.ID, now, elapsed, false); err != nil {
		return nil, err
	}

	session.EndedAt = &now
	session.DurationSeconds = elapsed
	session.Completed = false
	return session, nil
}
