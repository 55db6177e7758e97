package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/services/ai"
)

// Ranker builds the prioritized daily plan, delegating ordering to the AI
// provider and falling back to the deterministic heuristic when it fails.
type Ranker struct {
	tasks    database.TaskStore
	plans    database.PlanStore
	settings database.SettingsStore
	provider ai.AIProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewRanker creates a ranker. provider may be nil, in which case every plan
// uses the fallback ordering.
func NewRanker(tasks database.TaskStore, plans database.PlanStore, settings database.SettingsStore, provider ai.AIProvider, logger *zap.Logger) *Ranker {
	return &Ranker{
		tasks:    tasks,
		plans:    plans,
		settings: settings,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// PlanResult is a stored plan together with its resolved tasks.
type PlanResult struct {
	Date         string         `json:"date"`
	Tasks        []*models.Task `json:"tasks"`
	Reason       string         `json:"reason"`
	TotalPending int            `json:"total_pending"`
	UsedFallback bool           `json:"used_fallback"`
}

// Prioritize selects today's most important tasks, persists the plan, and
// writes the resulting scores back onto the tasks.
func (r *Ranker) Prioritize(ctx context.Context) (*PlanResult, error) {
	now := r.now().UTC()
	today := dateOf(now)

	settings, err := r.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	limit := settings.DailyTaskLimit

	candidates, err := r.tasks.ListIncompleteDueBy(ctx, today)
	if err != nil {
		return nil, err
	}

	pending, err := r.tasks.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	// Nothing is due yet: don't pin an empty plan to the day, or tasks
	// created later would never surface until the next prioritize run.
	if len(candidates) == 0 {
		r.logger.Info("daily_plan_skipped", zap.String("date", today))
		return &PlanResult{
			Date:         today,
			Tasks:        []*models.Task{},
			Reason:       FallbackReason,
			TotalPending: pending,
			UsedFallback: true,
		}, nil
	}

	selected, reason, priorities, usedFallback := r.rank(ctx, today, candidates, limit)

	taskIDs := make([]uuid.UUID, 0, len(selected))
	for rank, task := range selected {
		taskIDs = append(taskIDs, task.ID)

		score := defaultScore(rank)
		scoreReason := reason
		if p, ok := priorities[task.ID.String()]; ok {
			score = clampScore(p.Score)
			if p.Reason != "" {
				scoreReason = p.Reason
			}
		}
		task.PriorityScore = score
		task.PriorityReason = scoreReason

		// Score writeback is best effort; the plan itself is the source of
		// truth for ordering.
		if err := r.tasks.SetPriority(ctx, task.ID, score, scoreReason); err != nil {
			r.logger.Warn("priority_writeback_failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
		}
	}

	plan := &models.DailyPlan{
		ID:                   uuid.New(),
		Date:                 today,
		TaskIDs:              taskIDs,
		PrioritizationReason: reason,
		CreatedAt:            now,
	}
	if err := r.plans.Upsert(ctx, plan); err != nil {
		return nil, err
	}

	r.logger.Info("daily_plan_created",
		zap.String("date", today),
		zap.Int("selected", len(selected)),
		zap.Int("candidates", len(candidates)),
		zap.Bool("used_fallback", usedFallback),
	)

	return &PlanResult{
		Date:         today,
		Tasks:        selected,
		Reason:       reason,
		TotalPending: pending,
		UsedFallback: usedFallback,
	}, nil
}

// rank asks the provider for an ordering and validates it against the
// candidate set. Any failure degrades to the fallback heuristic.
func (r *Ranker) rank(ctx context.Context, today string, candidates []*models.Task, limit int) ([]*models.Task, string, map[string]ai.TaskPriority, bool) {
	if r.provider == nil {
		return r.fallback(candidates, limit), FallbackReason, nil, true
	}

	result, err := r.provider.RankTasks(ctx, today, candidates)
	if err != nil {
		r.logger.Warn("ai_ranking_failed",
			zap.String("cause", classifyProviderError(err)),
			zap.Error(err),
		)
		return r.fallback(candidates, limit), FallbackReason, nil, true
	}

	byID := make(map[string]*models.Task, len(candidates))
	for _, t := range candidates {
		byID[t.ID.String()] = t
	}

	seen := make(map[string]bool, len(result.SelectedTaskIDs))
	selected := make([]*models.Task, 0, limit)
	for _, id := range result.SelectedTaskIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		task, ok := byID[id]
		if !ok {
			r.logger.Warn("ai_ranking_unknown_task", zap.String("task_id", id))
			continue
		}
		selected = append(selected, task)
		if limit > 0 && len(selected) >= limit {
			break
		}
	}

	if len(selected) == 0 {
		r.logger.Warn("ai_ranking_selected_nothing_usable")
		return r.fallback(candidates, limit), FallbackReason, nil, true
	}

	reason := result.Reason
	if reason == "" {
		reason = FallbackReason
	}

	return selected, reason, result.TaskPriorities, false
}

func (r *Ranker) fallback(candidates []*models.Task, limit int) []*models.Task {
	ordered := make([]*models.Task, len(candidates))
	copy(ordered, candidates)
	sortFallback(ordered)
	return capTasks(ordered, limit)
}

// classifyProviderError labels ranking failures so quota exhaustion (which
// needs operator action) is distinguishable from transient throttling.
func classifyProviderError(err error) string {
	switch {
	case ai.IsQuotaError(err):
		return "quota_exhausted"
	case ai.IsRateLimitError(err):
		return "rate_limited"
	default:
		return "provider_error"
	}
}
