package google

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/focusflow/focusflow/internal/models"
)

const (
	// primaryCalendar is the user's default calendar.
	primaryCalendar = "primary"
	// maxCalendarResults bounds a single listing call.
	maxCalendarResults = 50
)

// EventView is a calendar event trimmed for the API surface.
type EventView struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	AllDay      bool       `json:"all_day"`
}

// ListEvents fetches upcoming events from the primary calendar for the next
// given number of days.
func (s *Service) ListEvents(ctx context.Context, days int) ([]EventView, error) {
	if days <= 0 {
		days = 7
	}

	httpClient, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	now := s.now().UTC()
	events, err := srv.Events.List(primaryCalendar).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxCalendarResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	views := make([]EventView, 0, len(events.Items))
	for _, item := range events.Items {
		views = append(views, eventView(item))
	}
	return views, nil
}

// ImportEvents turns upcoming calendar events into tasks. Events already
// imported are skipped via the (source, source_id) uniqueness rule.
func (s *Service) ImportEvents(ctx context.Context, days int) (*ImportResult, error) {
	events, err := s.ListEvents(ctx, days)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, event := range events {
		if event.Summary == "" {
			result.Skipped++
			continue
		}

		task := s.taskFromEvent(event)
		inserted, err := s.tasks.CreateImported(ctx, task)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	s.logger.Info("calendar_import_completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// taskFromEvent builds an importable task. The event's start time becomes the
// deadline and its date the scheduled day; duration feeds the estimate.
func (s *Service) taskFromEvent(event EventView) *models.Task {
	sourceID := event.ID
	now := s.now().UTC()

	task := &models.Task{
		ID:            uuid.New(),
		Title:         event.Summary,
		Description:   event.Description,
		Category:      "calendar",
		Source:        models.TaskSourceCalendar,
		SourceID:      &sourceID,
		CreatedAt:     now,
		ScheduledDate: now.Format(models.DateLayout),
		Recurrence:    models.RecurrenceNone,
	}

	if event.Start != nil {
		task.ScheduledDate = event.Start.UTC().Format(models.DateLayout)
		if !event.AllDay {
			deadline := event.Start.UTC()
			task.Deadline = &deadline
		}
		if event.End != nil && event.End.After(*event.Start) {
			task.EstimatedMinutes = int(event.End.Sub(*event.Start).Minutes())
		}
	}

	// Events without a usable duration get the same estimate a manually
	// created task would.
	if task.EstimatedMinutes <= 0 {
		task.EstimatedMinutes = models.DefaultEstimatedMinutes
	}

	return task
}

func eventView(item *calendar.Event) EventView {
	view := EventView{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	view.Start, view.AllDay = parseEventTime(item.Start)
	view.End, _ = parseEventTime(item.End)
	return view
}

// parseEventTime handles both timed and all-day events.
func parseEventTime(t *calendar.EventDateTime) (*time.Time, bool) {
	if t == nil {
		return nil, false
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return nil, false
		}
		return &parsed, false
	}
	if t.Date != "" {
		parsed, err := time.Parse(models.DateLayout, t.Date)
		if err != nil {
			return nil, false
		}
		return &parsed, true
	}
	return nil, false
}
