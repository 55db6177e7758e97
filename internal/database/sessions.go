package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/focusflow/focusflow/internal/models"
)

const sessionColumns = `id, task_id, session_type, started_at, ended_at, duration_seconds, completed`

// SessionRepository handles pomodoro session database operations
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row rowScanner) (*models.PomodoroSession, error) {
	session := &models.PomodoroSession{}
	var endedAt sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.TaskID,
		&session.SessionType,
		&session.StartedAt,
		&endedAt,
		&session.DurationSeconds,
		&session.Completed,
	)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	return session, nil
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.PomodoroSession) error {
	query := `
		INSERT INTO pomodoro_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.TaskID,
		session.SessionType,
		session.StartedAt,
		session.EndedAt,
		session.DurationSeconds,
		session.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PomodoroSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// GetOpenByTask retrieves the open session for a task, or nil when none exists.
func (r *SessionRepository) GetOpenByTask(ctx context.Context, taskID uuid.UUID) (*models.PomodoroSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions
		WHERE task_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1`

	session, err := scanSession(r.db.QueryRowContext(ctx, query, taskID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return session, nil
}

// Close stamps the end of a session. Completed sessions keep their duration;
// abandoned ones are closed with completed = FALSE.
func (r *SessionRepository) Close(ctx context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int, completed bool) error {
	query := `
		UPDATE pomodoro_sessions
		SET ended_at = $2, duration_seconds = $3, completed = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, endedAt, durationSeconds, completed)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListCompletedWorkBetween retrieves completed work sessions started within [from, to).
func (r *SessionRepository) ListCompletedWorkBetween(ctx context.Context, from, to time.Time) ([]*models.PomodoroSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM pomodoro_sessions
		WHERE session_type = $1 AND completed = TRUE AND started_at >= $2 AND started_at < $3
		ORDER BY started_at ASC`

	rows, err := r.db.QueryContext(ctx, query, models.SessionTypeWork, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query work sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.PomodoroSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}
