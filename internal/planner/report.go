package planner

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/services/ai"
)

// Reporter aggregates weekly activity and optionally narrates it through the
// AI provider.
type Reporter struct {
	tasks    database.TaskStore
	sessions database.SessionStore
	provider ai.AIProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewReporter creates a reporter. provider may be nil; reports then carry no
// generated insights.
func NewReporter(tasks database.TaskStore, sessions database.SessionStore, provider ai.AIProvider, logger *zap.Logger) *Reporter {
	return &Reporter{
		tasks:    tasks,
		sessions: sessions,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// DayStat is one day's activity within a weekly report.
type DayStat struct {
	Date         string `json:"date"`
	Completed    int    `json:"completed"`
	FocusMinutes int    `json:"focus_minutes"`
	Pomodoros    int    `json:"pomodoros"`
}

// WeeklyReport covers the seven days ending today.
type WeeklyReport struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	TasksCompleted int            `json:"tasks_completed"`
	FocusMinutes   int            `json:"focus_minutes"`
	Pomodoros      int            `json:"pomodoros"`
	ByDay          []DayStat      `json:"by_day"`
	ByCategory     map[string]int `json:"by_category"`
	Insights       string         `json:"insights,omitempty"`
}

// Weekly builds the report for the seven days ending today (inclusive).
func (r *Reporter) Weekly(ctx context.Context) (*WeeklyReport, error) {
	now := r.now().UTC()
	end := now.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -7)

	completed, err := r.tasks.ListCompletedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	sessions, err := r.sessions.ListCompletedWorkBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &WeeklyReport{
		From:           dateOf(start),
		To:             dateOf(end.AddDate(0, 0, -1)),
		TasksCompleted: len(completed),
		ByCategory:     make(map[string]int),
	}

	days := make(map[string]*DayStat, 7)
	for i := 0; i < 7; i++ {
		date := dateOf(start.AddDate(0, 0, i))
		stat := &DayStat{Date: date}
		days[date] = stat
		report.ByDay = append(report.ByDay, DayStat{Date: date})
	}

	for _, task := range completed {
		category := task.Category
		if category == "" {
			category = "uncategorized"
		}
		report.ByCategory[category]++

		if task.CompletedAt != nil {
			if stat, ok := days[dateOf(*task.CompletedAt)]; ok {
				stat.Completed++
			}
		}
	}

	// Seconds are summed first and converted to minutes once per bucket, so
	// short sessions are not rounded away session by session.
	focusSeconds := 0
	daySeconds := make(map[string]int, len(days))
	for _, s := range sessions {
		focusSeconds += s.DurationSeconds
		report.Pomodoros++
		if stat, ok := days[dateOf(s.StartedAt)]; ok {
			stat.Pomodoros++
			daySeconds[stat.Date] += s.DurationSeconds
		}
	}
	report.FocusMinutes = focusSeconds / 60
	for date, seconds := range daySeconds {
		days[date].FocusMinutes = seconds / 60
	}

	for i := range report.ByDay {
		if stat, ok := days[report.ByDay[i].Date]; ok {
			report.ByDay[i] = *stat
		}
	}

	return report, nil
}

// AddInsights fills in the report's generated narrative. Provider failures
// are logged and leave the report usable without insights.
func (r *Reporter) AddInsights(ctx context.Context, report *WeeklyReport) {
	if r.provider == nil {
		return
	}

	summary, err := json.Marshal(report)
	if err != nil {
		r.logger.Warn("report_serialize_failed", zap.Error(err))
		return
	}

	insights, err := r.provider.GenerateInsights(ctx, string(summary))
	if err != nil {
		r.logger.Warn("insights_generation_failed", zap.Error(err))
		return
	}
	report.Insights = insights
}
