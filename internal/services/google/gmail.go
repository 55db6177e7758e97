package google

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/focusflow/focusflow/internal/models"
)

const (
	// defaultMessageQuery selects actionable mail for import suggestions.
	defaultMessageQuery = "is:starred OR label:important is:unread"
	// maxMessageResults bounds a single listing call.
	maxMessageResults = 25
)

// MessageView is an email message trimmed for the API surface.
type MessageView struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// ListMessages fetches messages matching the query, defaulting to starred and
// important unread mail.
func (s *Service) ListMessages(ctx context.Context, query string) ([]MessageView, error) {
	if query == "" {
		query = defaultMessageQuery
	}

	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, err
	}

	listed, err := srv.Users.Messages.List("me").
		Q(query).
		MaxResults(maxMessageResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]MessageView, 0, len(listed.Messages))
	for _, ref := range listed.Messages {
		msg, err := fetchMessage(ctx, srv, ref.Id)
		if err != nil {
			s.logger.Warn("message_fetch_failed", zap.String("message_id", ref.Id), zap.Error(err))
			continue
		}
		views = append(views, messageView(msg))
	}
	return views, nil
}

// ImportMessages turns the given messages into tasks. With no IDs, every
// message matching the default query is imported. Duplicates are skipped via
// the (source, source_id) uniqueness rule.
func (s *Service) ImportMessages(ctx context.Context, messageIDs []string) (*ImportResult, error) {
	result := &ImportResult{}

	var messages []MessageView
	if len(messageIDs) > 0 {
		// Requested ids are fetched individually so the import is not
		// limited to mail matching the default suggestion query.
		srv, err := s.gmailService(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range messageIDs {
			msg, err := fetchMessage(ctx, srv, id)
			if err != nil {
				s.logger.Warn("message_fetch_failed", zap.String("message_id", id), zap.Error(err))
				result.Skipped++
				continue
			}
			messages = append(messages, messageView(msg))
		}
	} else {
		var err error
		messages, err = s.ListMessages(ctx, "")
		if err != nil {
			return nil, err
		}
	}

	for _, msg := range messages {
		if msg.Subject == "" {
			result.Skipped++
			continue
		}

		task := s.taskFromMessage(msg)
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

	s.logger.Info("gmail_import_completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) gmailService(ctx context.Context) (*gmail.Service, error) {
	httpClient, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return srv, nil
}

func fetchMessage(ctx context.Context, srv *gmail.Service, id string) (*gmail.Message, error) {
	return srv.Users.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Date").
		Context(ctx).
		Do()
}

func (s *Service) taskFromMessage(msg MessageView) *models.Task {
	sourceID := msg.ID
	now := s.now().UTC()

	description := msg.Snippet
	if msg.From != "" {
		description = "From: " + msg.From + "\n" + description
	}

	return &models.Task{
		ID:               uuid.New(),
		Title:            msg.Subject,
		Description:      description,
		Category:         "email",
		Source:           models.TaskSourceEmail,
		SourceID:         &sourceID,
		EstimatedMinutes: models.DefaultEstimatedMinutes,
		CreatedAt:        now,
		ScheduledDate:    now.Format(models.DateLayout),
		Recurrence:       models.RecurrenceNone,
	}
}

func messageView(msg *gmail.Message) MessageView {
	view := MessageView{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				view.Subject = header.Value
			case "From":
				view.From = header.Value
			case "Date":
				if parsed, err := time.Parse(time.RFC1123Z, header.Value); err == nil {
					view.Date = parsed.UTC().Format(time.RFC3339)
				} else {
					view.Date = header.Value
				}
			}
		}
	}
	return view
}
