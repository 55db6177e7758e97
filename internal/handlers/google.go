package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/services/google"
)

const oauthStateCookie = "ff_oauth_state"

// GoogleHandler handles the Google OAuth flow and import endpoints.
type GoogleHandler struct {
	google      *google.Service
	frontendURL string
	logger      *zap.Logger
}

// NewGoogleHandler creates a Google integration handler.
func NewGoogleHandler(svc *google.Service, frontendURL string, logger *zap.Logger) *GoogleHandler {
	return &GoogleHandler{
		google:      svc,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// RegisterRoutes registers Google integration routes.
func (h *GoogleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/google/auth/login", h.Login).Methods(http.MethodGet)
	r.HandleFunc("/google/auth/callback", h.Callback).Methods(http.MethodGet)
	r.HandleFunc("/google/disconnect", h.Disconnect).Methods(http.MethodPost)
	r.HandleFunc("/google/calendar/events", h.CalendarEvents).Methods(http.MethodGet)
	r.HandleFunc("/google/calendar/import", h.CalendarImport).Methods(http.MethodPost)
	r.HandleFunc("/google/gmail/messages", h.GmailMessages).Methods(http.MethodGet)
	r.HandleFunc("/google/gmail/import", h.GmailImport).Methods(http.MethodPost)
}

// Login returns the authorization URL and sets the state cookie.
func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start authorization")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.google.LoginURL(state),
	})
}

// Callback completes the OAuth exchange and sends the browser back to the
// frontend settings page.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing authorization code")
		return
	}

	email, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google_exchange_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Authorization with Google failed")
		return
	}

	// Clear the used state cookie.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	h.logger.Info("google_callback_completed", zap.String("email", email))
	http.Redirect(w, r, h.frontendURL+"/settings?google=connected", http.StatusFound)
}

// Disconnect unlinks the Google account.
func (h *GoogleHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.google.Disconnect(r.Context()); err != nil {
		h.logger.Error("google_disconnect_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// CalendarEvents lists upcoming events.
func (h *GoogleHandler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	events, err := h.google.ListEvents(r.Context(), days)
	if err != nil {
		h.respondGoogleError(w, "calendar_events_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

type calendarImportRequest struct {
	Days int `json:"days" validate:"min=0,max=90"`
}

// CalendarImport turns upcoming events into tasks.
func (h *GoogleHandler) CalendarImport(w http.ResponseWriter, r *http.Request) {
	req := calendarImportRequest{Days: 7}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
	}

	result, err := h.google.ImportEvents(r.Context(), req.Days)
	if err != nil {
		h.respondGoogleError(w, "calendar_import_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GmailMessages lists actionable mail.
func (h *GoogleHandler) GmailMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.google.ListMessages(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondGoogleError(w, "gmail_messages_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

type gmailImportRequest struct {
	MessageIDs []string `json:"message_ids"`
}

// GmailImport turns selected messages into tasks.
func (h *GoogleHandler) GmailImport(w http.ResponseWriter, r *http.Request) {
	req := gmailImportRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
	}

	result, err := h.google.ImportMessages(r.Context(), req.MessageIDs)
	if err != nil {
		h.respondGoogleError(w, "gmail_import_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *GoogleHandler) respondGoogleError(w http.ResponseWriter, event string, err error) {
	if errors.Is(err, google.ErrNotConnected) {
		respondJSONError(w, http.StatusConflict, "Not Connected", "Connect a Google account first")
		return
	}
	h.logger.Error(event, zap.Error(err))
	respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Google API request failed")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
