package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/focusflow/focusflow/internal/database"
)

// ErrNotConnected is returned when no Google account has been linked.
var ErrNotConnected = errors.New("google account not connected")

// Scopes requested during authorization. Read-only: tasks are imported from
// Google, never written back.
var scopes = []string{
	calendar.CalendarReadonlyScope,
	gmail.GmailReadonlyScope,
}

// Service handles the Google OAuth flow and authenticated API access. The
// token lives in the settings record so a restart keeps the connection.
type Service struct {
	oauth    *oauth2.Config
	tasks    database.TaskStore
	settings database.SettingsStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Google integration service.
func NewService(clientID, clientSecret, redirectURL string, tasks database.TaskStore, settings database.SettingsStore, logger *zap.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     googleoauth.Endpoint,
		},
		tasks:    tasks,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginURL builds the authorization URL. AccessTypeOffline and the consent
// prompt ensure Google returns a refresh token.
func (s *Service) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token, resolves the account
// email, and persists the connection. Returns the connected email address.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token: %w", err)
	}

	email, err := s.profileEmail(ctx, s.oauth.Client(ctx, token))
	if err != nil {
		return "", err
	}

	if err := s.settings.SaveGoogleConnection(ctx, string(tokenJSON), email); err != nil {
		return "", err
	}

	s.logger.Info("google_account_connected", zap.String("email", email))
	return email, nil
}

// Disconnect drops the stored token and connection flags.
func (s *Service) Disconnect(ctx context.Context) error {
	if err := s.settings.ClearGoogleConnection(ctx); err != nil {
		return err
	}
	s.logger.Info("google_account_disconnected")
	return nil
}

// Connected reports whether a usable token is stored.
func (s *Service) Connected(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.GoogleToken != "", nil
}

// client returns an HTTP client backed by the stored token. Refreshed tokens
// are written back so the refresh token chain is never lost.
func (s *Service) client(ctx context.Context) (*http.Client, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.GoogleToken == "" {
		return nil, ErrNotConnected
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal([]byte(settings.GoogleToken), token); err != nil {
		return nil, fmt.Errorf("failed to decode stored token: %w", err)
	}

	source := s.oauth.TokenSource(ctx, token)
	current, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if current.AccessToken != token.AccessToken {
		refreshed, err := json.Marshal(current)
		if err == nil {
			if err := s.settings.SaveGoogleConnection(ctx, string(refreshed), settings.GoogleEmail); err != nil {
				s.logger.Warn("token_persist_failed", zap.Error(err))
			}
		}
	}

	return oauth2.NewClient(ctx, source), nil
}

// profileEmail resolves the account's email via the Gmail profile endpoint,
// which is covered by the scopes already requested.
func (s *Service) profileEmail(ctx context.Context, httpClient *http.Client) (string, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", fmt.Errorf("failed to create gmail service: %w", err)
	}
	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// ImportResult reports how an import run went.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
