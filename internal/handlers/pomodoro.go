package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/planner"
	"github.com/focusflow/focusflow/internal/validation"
)

// PomodoroHandler handles timer session requests.
type PomodoroHandler struct {
	tracker *planner.Tracker
	logger  *zap.Logger
}

// NewPomodoroHandler creates a pomodoro handler.
func NewPomodoroHandler(tracker *planner.Tracker, logger *zap.Logger) *PomodoroHandler {
	return &PomodoroHandler{tracker: tracker, logger: logger}
}

// RegisterRoutes registers pomodoro routes.
func (h *PomodoroHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/pomodoro/start", h.Start).Methods(http.MethodPost)
	r.HandleFunc("/pomodoro/{id}/complete", h.Complete).Methods(http.MethodPost)
	r.HandleFunc("/pomodoro/{id}/stop", h.Stop).Methods(http.MethodPost)
}

type startSessionRequest struct {
	TaskID      uuid.UUID `json:"task_id" validate:"required"`
	SessionType string    `json:"session_type" validate:"required,session_type"`
}

type completeSessionRequest struct {
	DurationSeconds int `json:"duration_seconds" validate:"min=0,max=86400"`
}

// Start opens a session against a task.
func (h *PomodoroHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	session, err := h.tracker.Start(r.Context(), req.TaskID, models.SessionType(req.SessionType))
	if err != nil {
		h.logger.Error("session_start_failed", zap.String("task_id", req.TaskID.String()), zap.Error(err))
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// Complete closes a session as a finished interval.
func (h *PomodoroHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid session id")
		return
	}

	var req completeSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	session, err := h.tracker.Complete(r.Context(), id, req.DurationSeconds)
	if err != nil {
		h.respondTrackerError(w, id, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Stop abandons an open session.
func (h *PomodoroHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid session id")
		return
	}

	session, err := h.tracker.Stop(r.Context(), id)
	if err != nil {
		h.respondTrackerError(w, id, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *PomodoroHandler) respondTrackerError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidDuration):
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
	case errors.Is(err, planner.ErrSessionClosed):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("session_update_failed", zap.String("session_id", id.String()), zap.Error(err))
		respondStoreError(w, err)
	}
}
