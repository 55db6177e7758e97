package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/validation"
)

// SettingsHandler handles the settings singleton.
type SettingsHandler struct {
	settings database.SettingsStore
	logger   *zap.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings database.SettingsStore, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// RegisterRoutes registers settings routes.
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/settings", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/settings", h.Update).Methods(http.MethodPut)
}

// updateSettingsRequest is an allow-list: connection state and the stored
// token can only change through the Google flow, never through this endpoint.
type updateSettingsRequest struct {
	PomodoroWorkMinutes *int  `json:"pomodoro_work_minutes" validate:"omitempty,min=1,max=120"`
	PomodoroShortBreak  *int  `json:"pomodoro_short_break" validate:"omitempty,min=1,max=60"`
	PomodoroLongBreak   *int  `json:"pomodoro_long_break" validate:"omitempty,min=1,max=120"`
	DailyTaskLimit      *int  `json:"daily_task_limit" validate:"omitempty,min=1,max=20"`
	AutoRollover        *bool `json:"auto_rollover"`
	DarkMode            *bool `json:"dark_mode"`
}

// Get returns the settings record, creating defaults on first access.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("get_settings_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Update applies partial settings changes.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if req.PomodoroWorkMinutes != nil {
		settings.PomodoroWorkMinutes = *req.PomodoroWorkMinutes
	}
	if req.PomodoroShortBreak != nil {
		settings.PomodoroShortBreak = *req.PomodoroShortBreak
	}
	if req.PomodoroLongBreak != nil {
		settings.PomodoroLongBreak = *req.PomodoroLongBreak
	}
	if req.DailyTaskLimit != nil {
		settings.DailyTaskLimit = *req.DailyTaskLimit
	}
	if req.AutoRollover != nil {
		settings.AutoRollover = *req.AutoRollover
	}
	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}

	if err := h.settings.Save(r.Context(), settings); err != nil {
		h.logger.Error("save_settings_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	h.logger.Info("settings_updated")
	respondJSON(w, http.StatusOK, settings)
}
