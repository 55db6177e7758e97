package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
)

// memTaskStore is an in-memory TaskStore for handler tests.
type memTaskStore struct {
	tasks map[uuid.UUID]*models.Task
}

func newMemTaskStore(tasks ...*models.Task) *memTaskStore {
	s := &memTaskStore{tasks: make(map[uuid.UUID]*models.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memTaskStore) Create(_ context.Context, task *models.Task) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *memTaskStore) CreateImported(_ context.Context, task *models.Task) (bool, error) {
	for _, t := range s.tasks {
		if t.SourceID != nil && task.SourceID != nil && t.Source == task.Source && *t.SourceID == *task.SourceID {
			return false, nil
		}
	}
	s.tasks[task.ID] = task
	return true, nil
}

func (s *memTaskStore) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return t, nil
}

func (s *memTaskStore) List(_ context.Context, includeCompleted bool, date string) ([]*models.Task, error) {
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
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memTaskStore) ListIncompleteDueBy(_ context.Context, date string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if !t.Completed && t.ScheduledDate <= date {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTaskStore) ListIncompleteBefore(_ context.Context, date string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if !t.Completed && t.ScheduledDate < date {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTaskStore) ListOpenByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && !t.Completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTaskStore) Update(_ context.Context, task *models.Task) error {
	if _, ok := s.tasks[task.ID]; !ok {
		return database.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) Reschedule(_ context.Context, id uuid.UUID, newDate string) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	if !t.Completed {
		t.ScheduledDate = newDate
		t.RolloverCount++
	}
	return nil
}

func (s *memTaskStore) SetPriority(_ context.Context, id uuid.UUID, score int, reason string) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	t.PriorityScore = score
	t.PriorityReason = reason
	return nil
}

func (s *memTaskStore) MarkStarted(_ context.Context, id uuid.UUID, at time.Time) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	if t.StartedAt == nil {
		t.StartedAt = &at
	}
	return nil
}

func (s *memTaskStore) AddTimeSpent(_ context.Context, id uuid.UUID, seconds int) error {
	t, ok := s.tasks[id]
	if !ok {
		return database.ErrNotFound
	}
	t.TimeSpentSeconds += seconds
	return nil
}

func (s *memTaskStore) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, t := range s.tasks {
		if !t.Completed {
			count++
		}
	}
	return count, nil
}

func (s *memTaskStore) ListCompletedBetween(_ context.Context, from, to time.Time) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range s.tasks {
		if t.Completed && t.CompletedAt != nil && !t.CompletedAt.Before(from) && t.CompletedAt.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	sessions map[uuid.UUID]*models.PomodoroSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[uuid.UUID]*models.PomodoroSession)}
}

func (s *memSessionStore) Create(_ context.Context, session *models.PomodoroSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memSessionStore) GetByID(_ context.Context, id uuid.UUID) (*models.PomodoroSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return sess, nil
}

func (s *memSessionStore) GetOpenByTask(_ context.Context, taskID uuid.UUID) (*models.PomodoroSession, error) {
	for _, sess := range s.sessions {
		if sess.TaskID == taskID && sess.Open() {
			return sess, nil
		}
	}
	return nil, nil
}

func (s *memSessionStore) Close(_ context.Context, id uuid.UUID, endedAt time.Time, durationSeconds int, completed bool) error {
	sess, ok := s.sessions[id]
	if !ok {
		return database.ErrNotFound
	}
	sess.EndedAt = &endedAt
	sess.DurationSeconds = durationSeconds
	sess.Completed = completed
	return nil
}

func (s *memSessionStore) ListCompletedWorkBetween(_ context.Context, from, to time.Time) ([]*models.PomodoroSession, error) {
	var out []*models.PomodoroSession
	for _, sess := range s.sessions {
		if sess.SessionType == models.SessionTypeWork && sess.Completed &&
			!sess.StartedAt.Before(from) && sess.StartedAt.Before(to) {
			out = append(out, sess)
		}
	}
	return out, nil
}

// memPlanStore is an in-memory PlanStore.
type memPlanStore struct {
	plans map[string]*models.DailyPlan
}

func newMemPlanStore() *memPlanStore {
	return &memPlanStore{plans: make(map[string]*models.DailyPlan)}
}

func (s *memPlanStore) Upsert(_ context.Context, plan *models.DailyPlan) error {
	s.plans[plan.Date] = plan
	return nil
}

func (s *memPlanStore) GetByDate(_ context.Context, date string) (*models.DailyPlan, error) {
	return s.plans[date], nil
}

// memSettingsStore holds a single settings record.
type memSettingsStore struct {
	settings *models.Settings
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{settings: models.DefaultSettings()}
}

func (s *memSettingsStore) Get(_ context.Context) (*models.Settings, error) {
	return s.settings, nil
}

func (s *memSettingsStore) Save(_ context.Context, settings *models.Settings) error {
	s.settings = settings
	return nil
}

func (s *memSettingsStore) SaveGoogleConnection(_ context.Context, tokenJSON, email string) error {
	s.settings.GoogleToken = tokenJSON
	s.settings.GoogleEmail = email
	s.settings.GoogleCalendarConnected = true
	s.settings.GmailConnected = true
	return nil
}

func (s *memSettingsStore) ClearGoogleConnection(_ context.Context) error {
	s.settings.GoogleToken = ""
	s.settings.GoogleEmail = ""
	s.settings.GoogleCalendarConnected = false
	s.settings.GmailConnected = false
	return nil
}

var (
	_ database.TaskStore     = (*memTaskStore)(nil)
	_ database.SessionStore  = (*memSessionStore)(nil)
	_ database.PlanStore     = (*memPlanStore)(nil)
	_ database.SettingsStore = (*memSettingsStore)(nil)
)
