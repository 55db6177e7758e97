package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/models"
)

func newTestRollover(tasks *fakeTaskStore) *Rollover {
	r := NewRollover(tasks, zap.NewNop())
	r.now = fixedNow
	return r
}

func TestRolloverMovesStaleTasks(t *testing.T) {
	t.Parallel()

	stale1 := newTask("from monday", "2025-01-06")
	stale2 := newTask("from thursday", "2025-01-09", withRollover(2))
	today := newTask("already today", "2025-01-10")
	done := newTask("finished yesterday", "2025-01-09")
	done.Completed = true

	tasks := newFakeTaskStore(stale1, stale2, today, done)
	rollover := newTestRollover(tasks)

	result, err := rollover.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Moved != 2 {
		t.Errorf("moved = %d, want 2", result.Moved)
	}
	if result.Failed != 0 {
		t.Errorf("failed = %d, want 0", result.Failed)
	}
	if result.Date != "2025-01-10" {
		t.Errorf("date = %q", result.Date)
	}

	for _, task := range []*models.Task{stale1, stale2} {
		if task.ScheduledDate != "2025-01-10" {
			t.Errorf("%s scheduled = %q, want 2025-01-10", task.Title, task.ScheduledDate)
		}
	}
	if stale1.RolloverCount != 1 {
		t.Errorf("rollover count = %d, want 1", stale1.RolloverCount)
	}
	if stale2.RolloverCount != 3 {
		t.Errorf("rollover count = %d, want 3", stale2.RolloverCount)
	}
	if today.ScheduledDate != "2025-01-10" || today.RolloverCount != 0 {
		t.Error("today's task should be untouched")
	}
	if done.ScheduledDate != "2025-01-09" {
		t.Error("completed task should be untouched")
	}
}

func TestRolloverIsIdempotent(t *testing.T) {
	t.Parallel()

	stale := newTask("lagging", "2025-01-08")
	tasks := newFakeTaskStore(stale)
	rollover := newTestRollover(tasks)

	first, err := rollover.Run(context.Background(), "2025-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Moved != 1 {
		t.Fatalf("first run moved = %d, want 1", first.Moved)
	}

	second, err := rollover.Run(context.Background(), "2025-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Moved != 0 {
		t.Errorf("second run moved = %d, want 0", second.Moved)
	}
	if stale.RolloverCount != 1 {
		t.Errorf("rollover count = %d, want 1 after rerun", stale.RolloverCount)
	}
}

func TestRolloverIsolatesFailures(t *testing.T) {
	t.Parallel()

	ok := newTask("fine", "2025-01-08")
	bad := newTask("broken", "2025-01-08")
	tasks := newFakeTaskStore(ok, bad)
	tasks.failReschedule[bad.ID] = errors.New("deadlock")

	rollover := newTestRollover(tasks)
	result, err := rollover.Run(context.Background(), "2025-01-10")
	if err != nil {
		t.Fatalf("run should not abort on per-task failure: %v", err)
	}

	if result.Moved != 1 {
		t.Errorf("moved = %d, want 1", result.Moved)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if ok.ScheduledDate != "2025-01-10" {
		t.Error("healthy task was not moved")
	}
}

func TestRolloverRejectsBadDate(t *testing.T) {
	t.Parallel()

	rollover := newTestRollover(newFakeTaskStore())
	if _, err := rollover.Run(context.Background(), "Jan 10"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSpawnRecurring(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2025, 1, 10, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		recurrence   models.Recurrence
		wantDate     string
		wantDeadline time.Time
		wantSpawn    bool
	}{
		{"daily", models.RecurrenceDaily, "2025-01-11", deadline.AddDate(0, 0, 1), true},
		{"weekly", models.RecurrenceWeekly, "2025-01-17", deadline.AddDate(0, 0, 7), true},
		{"monthly", models.RecurrenceMonthly, "2025-02-10", deadline.AddDate(0, 1, 0), true},
		{"none", models.RecurrenceNone, "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := newTask("standup notes", "2025-01-10", withDeadline(deadline))
			task.Recurrence = tt.recurrence
			task.PriorityScore = 80
			task.TimeSpentSeconds = 1500
			task.RolloverCount = 3

			tasks := newFakeTaskStore(task)
			rollover := newTestRollover(tasks)

			next, err := rollover.SpawnRecurring(context.Background(), task)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tt.wantSpawn {
				if next != nil {
					t.Fatal("non-recurring task should not spawn")
				}
				return
			}

			if next == nil {
				t.Fatal("expected spawned task")
			}
			if next.ID == task.ID {
				t.Error("spawned task reused the source id")
			}
			if next.ScheduledDate != tt.wantDate {
				t.Errorf("scheduled = %q, want %q", next.ScheduledDate, tt.wantDate)
			}
			if next.Deadline == nil || !next.Deadline.Equal(tt.wantDeadline) {
				t.Errorf("deadline = %v, want %v", next.Deadline, tt.wantDeadline)
			}
			if next.PriorityScore != 0 || next.TimeSpentSeconds != 0 || next.RolloverCount != 0 {
				t.Error("spawned task should start fresh")
			}
			if next.Recurrence != tt.recurrence {
				t.Error("spawned task should keep its recurrence")
			}
			if _, err := tasks.GetByID(context.Background(), next.ID); err != nil {
				t.Error("spawned task not persisted")
			}
		})
	}
}
