package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/focusflow/focusflow/internal/models"
)

// DailyPlanRepository handles daily plan database operations
type DailyPlanRepository struct {
	db *DB
}

// NewDailyPlanRepository creates a new daily plan repository
func NewDailyPlanRepository(db *DB) *DailyPlanRepository {
	return &DailyPlanRepository{db: db}
}

// Upsert writes the plan for its date, replacing any existing plan.
func (r *DailyPlanRepository) Upsert(ctx context.Context, plan *models.DailyPlan) error {
	taskIDsJSON, err := json.Marshal(plan.TaskIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal task ids: %w", err)
	}

	query := `
		INSERT INTO daily_plans (id, date, task_ids, prioritization_reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE
		SET id = EXCLUDED.id,
			task_ids = EXCLUDED.task_ids,
			prioritization_reason = EXCLUDED.prioritization_reason,
			created_at = EXCLUDED.created_at
	`

	_, err = r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Date,
		taskIDsJSON,
		plan.PrioritizationReason,
		plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily plan: %w", err)
	}

	return nil
}

// GetByDate retrieves the plan for a date, or nil when none exists.
func (r *DailyPlanRepository) GetByDate(ctx context.Context, date string) (*models.DailyPlan, error) {
	plan := &models.DailyPlan{}
	var taskIDsJSON []byte
	var planDate time.Time

	query := `
		SELECT id, date, task_ids, prioritization_reason, created_at
		FROM daily_plans
		WHERE date = $1
	`

	err := r.db.QueryRowContext(ctx, query, date).Scan(
		&plan.ID,
		&planDate,
		&taskIDsJSON,
		&plan.PrioritizationReason,
		&plan.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily plan: %w", err)
	}

	plan.Date = planDate.Format(models.DateLayout)
	if err := json.Unmarshal(taskIDsJSON, &plan.TaskIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task ids: %w", err)
	}

	return plan, nil
}
