package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/services/ai"
)

// fakeTaskStore is an in-memory TaskStore for planner tests.
type fakeTaskStore struct {
	tasks map[uuid.UUID]*models.Task

	failReschedule map[uuid.UUID]error
	failSetPrio    error
}

func newFakeTaskStore(tasks ...*models.Task) *fakeTaskStore {
	s := &fakeTaskStore{
		tasks:          make(map[uuid.UUID]*models.Task),
		failReschedule: make(map[uuid.UUID]error),
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeTaskStore) Create(_ context.Context, task *models.Task) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) CreateImported(_ context.Context, task *models.Task) (bool, error) {
	for _, t := range s.tasks {
		if t.SourceID != nil && task.SourceID != nil && t.Source == task.Source && *t.SourceID == *task.SourceID {
			return false, nil
		}
	}
	s.tasks[task.ID] = task
	return true, nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return t, nil
}

func (s *fakeTaskStore) List(_ context.Context, includeCompleted bool, date string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if !includeCompleted && t.Completed {
			continue
		}
		if date != "" && t.ScheduledDate != date {
			continue
		}
		out = append(out, t)
	}
	sortByCreated(out)
	return out, nil
}

func (s *fakeTaskStore) ListIncompleteDueBy(_ context.Context, date string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if !t.Completed && t.ScheduledDate <= date {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *fakeTaskStore) ListIncompleteBefore(_ context.Context, date string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if !t.Completed && t.ScheduledDate < date {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *fakeTaskStore) ListOpenByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && !t.Completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *models.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return database.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) Reschedule(_ context.Context, id uuid.UUID, newDate string) error {
	if err, ok := s.failReschedule[id]; ok {
		return err
	}
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	if t.Completed {
		return nil
	}
	t.ScheduledDate = newDate
	t.RolloverCount++
	return nil
}

func (s *fakeTaskStore) SetPriority(_ context.Context, id uuid.UUID, score int, reason string) error {
	if s.failSetPrio != nil {
		return s.failSetPrio
	}
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	t.PriorityScore = score
	t.PriorityReason = reason
	return nil
}

func (s *fakeTaskStore) MarkStarted(_ context.Context, id uuid.UUID, at time.Time) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	if t.StartedAt == nil {
		t.StartedAt = &at
	}
	return nil
}

func (s *fakeTaskStore) AddTimeSpent(_ context.Context, id uuid.UUID, seconds int) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	t.TimeSpentSeconds += seconds
	return nil
}

func (s *fakeTaskStore) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, t := range s.tasks {
		if !t.Completed {
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) ListCompletedBetween(_ context.Context, from, to time.Time) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if t.Completed && t.CompletedAt != nil && !t.CompletedAt.Before(from) && t.CompletedAt.Before(to) {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	sessions map[uuid.UUID]*models.PomodoroSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*models.PomodoroSession)}
}

func (s *fakeSessionStore) Create(_ context.Context, session *models.PomodoroSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*models.PomodoroSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return sess, nil
}

func (s *fakeSessionStore) GetOpenByTask(_ context.Context, taskID uuid.UUID) (*models.PomodoroSession, error) {
	for _, sess := range s.sessions {
		if sess.TaskID == taskID && sess.Open() {
			return sess, nil
		}
	}
	return nil, nil
}

func (s *fakeSessionStore) Close(_ context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int, completed bool) error {
	sess, ok := s.sessions[id]
	if !ok {
		return database.ErrNotFound
	}
	sess.EndedAt = &endedAt
	sess.DurationSeconds = durationSeconds
	sess.Completed = completed
	return nil
}

func (s *fakeSessionStore) ListCompletedWorkBetween(_ context.Context, from, to time.Time) ([]*models.PomodoroSession, error) {
	var out []*models.PomodoroSession
	for _, sess := range s.sessions {
		if sess.SessionType != models.SessionTypeWork || !sess.Completed {
			continue
		}
		if !sess.StartedAt.Before(from) && sess.StartedAt.Before(to) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// fakePlanStore is an in-memory PlanStore keyed by date.
type fakePlanStore struct {
	plans map[string]*models.DailyPlan
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[string]*models.DailyPlan)}
}

func (s *fakePlanStore) Upsert(_ context.Context, plan *models.DailyPlan) error {
	s.plans[plan.Date] = plan
	return nil
}

func (s *fakePlanStore) GetByDate(_ context.Context, date string) (*models.DailyPlan, error) {
	return s.plans[date], nil
}

// fakeSettingsStore holds a single settings record.
type fakeSettingsStore struct {
	settings *models.Settings
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{settings: models.DefaultSettings()}
}

func (s *fakeSettingsStore) Get(_ context.Context) (*models.Settings, error) {
	return s.settings, nil
}

func (s *fakeSettingsStore) Save(_ context.Context, settings *models.Settings) error {
	s.settings = settings
	return nil
}

func (s *fakeSettingsStore) SaveGoogleConnection(_ context.Context, tokenJSON, email string) error {
	s.settings.GoogleToken = tokenJSON
	s.settings.GoogleEmail = email
	s.settings.GoogleCalendarConnected = true
	s.settings.GmailConnected = true
	return nil
}

func (s *fakeSettingsStore) ClearGoogleConnection(_ context.Context) error {
	s.settings.GoogleToken = ""
	s.settings.GoogleEmail = ""
	s.settings.GoogleCalendarConnected = false
	s.settings.GmailConnected = false
	return nil
}

// fakeProvider is a scripted AIProvider.
type fakeProvider struct {
	result   *ai.RankingResult
	insights string
	err      error
}

func (p *fakeProvider) RankTasks(_ context.Context, _ string, _ []*models.Task) (*ai.RankingResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func (p *fakeProvider) GenerateInsights(_ context.Context, _ string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.insights, nil
}

var (
	_ database.TaskStore     = (*fakeTaskStore)(nil)
	_ database.SessionStore  = (*fakeSessionStore)(nil)
	_ database.PlanStore     = (*fakePlanStore)(nil)
	_ database.SettingsStore = (*fakeSettingsStore)(nil)
	_ ai.AIProvider          = (*fakeProvider)(nil)
)
