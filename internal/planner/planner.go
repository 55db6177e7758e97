package planner

import (
	"sort"
	"time"

	"github.com/focusflow/focusflow/internal/models"
)

const (
	// FallbackReason explains a plan built without the AI provider.
	FallbackReason = "Prioritized by deadline, rollover count, and age"

	// MaxPriorityScore and MinPriorityScore bound stored priority scores.
	MaxPriorityScore = 100
	MinPriorityScore = 0

	// DefaultScoreStep is how much each rank position lowers the default score.
	DefaultScoreStep = 20

	// MaxSessionSeconds caps a single reported session duration at 24 hours.
	MaxSessionSeconds = 86400
)

// sortFallback orders tasks by the deterministic heuristic used whenever the
// AI provider is unavailable: earliest deadline first (tasks without a
// deadline last), then highest rollover count, then oldest creation time.
func sortFallback(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Deadline != nil && b.Deadline == nil:
			return true
		case a.Deadline == nil && b.Deadline != nil:
			return false
		case a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
			return a.Deadline.Before(*b.Deadline)
		}
		if a.RolloverCount != b.RolloverCount {
			return a.RolloverCount > b.RolloverCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// defaultScore derives a priority score from a task's position in the plan.
func defaultScore(rank int) int {
	return clampScore(MaxPriorityScore - rank*DefaultScoreStep)
}

func clampScore(score int) int {
	if score > MaxPriorityScore {
		return MaxPriorityScore
	}
	if score < MinPriorityScore {
		return MinPriorityScore
	}
	return score
}

// capTasks returns at most limit tasks, tolerating non-positive limits.
func capTasks(tasks []*models.Task, limit int) []*models.Task {
	if limit <= 0 || len(tasks) <= limit {
		return tasks
	}
	return tasks[:limit]
}

// dateOf formats a time as a calendar date in UTC.
func dateOf(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}

// dayBounds returns the UTC start of the date and the start of the next day.
func dayBounds(date string) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}
