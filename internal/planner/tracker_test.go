package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
)

func newTestTracker(tasks *fakeTaskStore, sessions *fakeSessionStore) *Tracker {
	tr := NewTracker(tasks, sessions, zap.NewNop())
	tr.now = fixedNow
	return tr
}

func TestTrackerStartWorkSession(t *testing.T) {
	t.Parallel()

	task := newTask("focus target", "2025-01-10")
	tasks := newFakeTaskStore(task)
	sessions := newFakeSessionStore()
	tracker := newTestTracker(tasks, sessions)

	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.TaskID != task.ID {
		t.Error("session bound to wrong task")
	}
	if !session.Open() {
		t.Error("new session should be open")
	}
	if !session.StartedAt.Equal(testNow) {
		t.Errorf("started at = %v", session.StartedAt)
	}
	if task.StartedAt == nil || !task.StartedAt.Equal(testNow) {
		t.Error("work session should stamp task started_at")
	}
}

func TestTrackerStartBreakDoesNotStampTask(t *testing.T) {
	t.Parallel()

	task := newTask("resting", "2025-01-10")
	tracker := newTestTracker(newFakeTaskStore(task), newFakeSessionStore())

	if _, err := tracker.Start(context.Background(), task.ID, models.SessionTypeShortBreak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.StartedAt != nil {
		t.Error("break session should not stamp task started_at")
	}
}

func TestTrackerStartClosesPreviousOpenSession(t *testing.T) {
	t.Parallel()

	task := newTask("flaky focus", "2025-01-10")
	tasks := newFakeTaskStore(task)
	sessions := newFakeSessionStore()
	tracker := newTestTracker(tasks, sessions)

	first, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := sessions.GetByID(context.Background(), first.ID)
	if stored.Open() {
		t.Error("previous session should be closed")
	}
	if stored.Completed {
		t.Error("abandoned session should not count as completed")
	}

	open, _ := sessions.GetOpenByTask(context.Background(), task.ID)
	if open == nil || open.ID != second.ID {
		t.Error("only the new session should be open")
	}
}

func TestTrackerStartUnknownTask(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker(newFakeTaskStore(), newFakeSessionStore())
	_, err := tracker.Start(context.Background(), uuid.New(), models.SessionTypeWork)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrackerComplete(t *testing.T) {
	t.Parallel()

	task := newTask("deep work", "2025-01-10")
	tasks := newFakeTaskStore(task)
	sessions := newFakeSessionStore()
	tracker := newTestTracker(tasks, sessions)

	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closed, err := tracker.Complete(context.Background(), session.ID, 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if closed.Open() {
		t.Error("completed session should be closed")
	}
	if !closed.Completed {
		t.Error("session should be marked completed")
	}
	if closed.DurationSeconds != 1500 {
		t.Errorf("duration = %d, want 1500", closed.DurationSeconds)
	}
	if task.TimeSpentSeconds != 1500 {
		t.Errorf("task time spent = %d, want 1500", task.TimeSpentSeconds)
	}
}

func TestTrackerCompleteBreakDoesNotAddTime(t *testing.T) {
	t.Parallel()

	task := newTask("recharging", "2025-01-10")
	tracker := newTestTracker(newFakeTaskStore(task), newFakeSessionStore())

	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeLongBreak)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.Complete(context.Background(), session.ID, 900); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.TimeSpentSeconds != 0 {
		t.Errorf("break should not add task time, got %d", task.TimeSpentSeconds)
	}
}

func TestTrackerCompleteValidatesDuration(t *testing.T) {
	t.Parallel()

	task := newTask("validated", "2025-01-10")
	tracker := newTestTracker(newFakeTaskStore(task), newFakeSessionStore())
	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		duration int
		wantErr  bool
	}{
		{"negative", -1, true},
		{"over 24 hours", MaxSessionSeconds + 1, true},
		{"zero is allowed", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tracker.Complete(context.Background(), session.ID, tt.duration)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Fatalf("expected ErrInvalidDuration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTrackerCompleteTwice(t *testing.T) {
	t.Parallel()

	task := newTask("once only", "2025-01-10")
	tracker := newTestTracker(newFakeTaskStore(task), newFakeSessionStore())
	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := tracker.Complete(context.Background(), session.ID, 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.Complete(context.Background(), session.ID, 1500); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestTrackerStop(t *testing.T) {
	t.Parallel()

	task := newTask("interrupted", "2025-01-10")
	tasks := newFakeTaskStore(task)
	sessions := newFakeSessionStore()
	tracker := newTestTracker(tasks, sessions)

	session, err := tracker.Start(context.Background(), task.ID, models.SessionTypeWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Pretend ten minutes passed.
	session.StartedAt = testNow.Add(-10 * time.Minute)

	stopped, err := tracker.Stop(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stopped.Completed {
		t.Error("stopped session should not count as completed")
	}
	if stopped.DurationSeconds != 600 {
		t.Errorf("duration = %d, want 600", stopped.DurationSeconds)
	}
	if task.TimeSpentSeconds != 0 {
		t.Error("stopped session should not add task time")
	}
}
