package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/focusflow/focusflow/internal/models"
)

const taskColumns = `id, title, description, deadline, estimated_minutes, category, source, source_id,
	priority_score, priority_reason, completed, started_at, completed_at, time_spent_seconds,
	created_at, scheduled_date, rollover_count, recurrence`

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var (
		deadline      sql.NullTime
		sourceID      sql.NullString
		startedAt     sql.NullTime
		completedAt   sql.NullTime
		scheduledDate time.Time
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&deadline,
		&task.EstimatedMinutes,
		&task.Category,
		&task.Source,
		&sourceID,
		&task.PriorityScore,
		&task.PriorityReason,
		&task.Completed,
		&startedAt,
		&completedAt,
		&task.TimeSpentSeconds,
		&task.CreatedAt,
		&scheduledDate,
		&task.RolloverCount,
		&task.Recurrence,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		task.Deadline = &deadline.Time
	}
	if sourceID.Valid {
		task.SourceID = &sourceID.String
	}
	if startedAt.Valid {
		task.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	task.ScheduledDate = scheduledDate.Format(models.DateLayout)

	return task, nil
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Deadline,
		task.EstimatedMinutes,
		task.Category,
		task.Source,
		task.SourceID,
		task.PriorityScore,
		task.PriorityReason,
		task.Completed,
		task.StartedAt,
		task.CompletedAt,
		task.TimeSpentSeconds,
		task.CreatedAt,
		task.ScheduledDate,
		task.RolloverCount,
		task.Recurrence,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// CreateImported inserts a task originating from an external source. Tasks
// with an already-imported (source, source_id) pair are skipped; the bool
// reports whether a row was actually inserted.
func (r *TaskRepository) CreateImported(ctx context.Context, task *models.Task) (bool, error) {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (source, source_id) WHERE source_id IS NOT NULL DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Deadline,
		task.EstimatedMinutes,
		task.Category,
		task.Source,
		task.SourceID,
		task.PriorityScore,
		task.PriorityReason,
		task.Completed,
		task.StartedAt,
		task.CompletedAt,
		task.TimeSpentSeconds,
		task.CreatedAt,
		task.ScheduledDate,
		task.RolloverCount,
		task.Recurrence,
	)
	if err != nil {
		return false, fmt.Errorf("failed to import task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List retrieves tasks, optionally including completed ones or filtered to a
// scheduled date, newest first.
func (r *TaskRepository) List(ctx context.Context, includeCompleted bool, date string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if !includeCompleted {
		query += " AND completed = FALSE"
	}
	if date != "" {
		args = append(args, date)
		query += fmt.Sprintf(" AND scheduled_date = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListIncompleteDueBy retrieves incomplete tasks scheduled on or before the
// given date. This is the ranking and daily-plan input set.
func (r *TaskRepository) ListIncompleteDueBy(ctx context.Context, date string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = FALSE AND scheduled_date <= $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListIncompleteBefore retrieves incomplete tasks scheduled strictly before
// the given date. This is the rollover input set.
func (r *TaskRepository) ListIncompleteBefore(ctx context.Context, date string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = FALSE AND scheduled_date < $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query rollover tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListOpenByIDs retrieves the incomplete tasks among the given IDs.
func (r *TaskRepository) ListOpenByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = FALSE AND id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by ids: %w", err)
	}
	return collectTasks(rows)
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, deadline = $4, estimated_minutes = $5, category = $6,
			priority_score = $7, priority_reason = $8, completed = $9, started_at = $10,
			completed_at = $11, time_spent_seconds = $12, scheduled_date = $13,
			rollover_count = $14, recurrence = $15
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Deadline,
		task.EstimatedMinutes,
		task.Category,
		task.PriorityScore,
		task.PriorityReason,
		task.Completed,
		task.StartedAt,
		task.CompletedAt,
		task.TimeSpentSeconds,
		task.ScheduledDate,
		task.RolloverCount,
		task.Recurrence,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// Reschedule moves a task to a new scheduled date and increments its rollover
// counter in a single statement.
func (r *TaskRepository) Reschedule(ctx context.Context, id uuid.UUID, newDate string) error {
	query := `
		UPDATE tasks
		SET scheduled_date = $2, rollover_count = rollover_count + 1
		WHERE id = $1 AND completed = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id, newDate)
	if err != nil {
		return fmt.Errorf("failed to reschedule task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// SetPriority writes a priority score and reason onto a task.
func (r *TaskRepository) SetPriority(ctx context.Context, id uuid.UUID, score int, reason string) error {
	query := `UPDATE tasks SET priority_score = $2, priority_reason = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, score, reason)
	if err != nil {
		return fmt.Errorf("failed to set task priority: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// MarkStarted stamps started_at if the task has not been started before.
func (r *TaskRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE tasks SET started_at = $2 WHERE id = $1 AND started_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark task started: %w", err)
	}
	return nil
}

// AddTimeSpent atomically accumulates focus time onto a task.
func (r *TaskRepository) AddTimeSpent(ctx context.Context, id uuid.UUID, seconds int) error {
	query := `UPDATE tasks SET time_spent_seconds = time_spent_seconds + $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, seconds)
	if err != nil {
		return fmt.Errorf("failed to add time spent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// CountPending counts incomplete tasks.
func (r *TaskRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE completed = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return count, nil
}

// ListCompletedBetween retrieves tasks completed within [from, to).
func (r *TaskRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE completed = TRUE AND completed_at >= $1 AND completed_at < $2
		ORDER BY completed_at ASC`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed tasks: %w", err)
	}
	return collectTasks(rows)
}
