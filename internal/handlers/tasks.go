package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/planner"
	"github.com/focusflow/focusflow/internal/validation"
)

// TaskHandler handles task CRUD and lifecycle requests.
type TaskHandler struct {
	tasks    database.TaskStore
	rollover *planner.Rollover
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskHandler creates a task handler.
func NewTaskHandler(tasks database.TaskStore, rollover *planner.Rollover, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		rollover: rollover,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes registers task routes.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks", h.List).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/complete", h.Complete).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/start", h.Start).Methods(http.MethodPost)
}

type createTaskRequest struct {
	Title            string     `json:"title" validate:"required,min=1,max=500"`
	Description      string     `json:"description" validate:"max=5000"`
	Deadline         *time.Time `json:"deadline"`
	EstimatedMinutes int        `json:"estimated_minutes" validate:"min=0,max=1440"`
	Category         string     `json:"category" validate:"max=100"`
	ScheduledDate    string     `json:"scheduled_date"`
	Recurrence       string     `json:"recurrence" validate:"omitempty,recurrence"`
}

type updateTaskRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=500"`
	Description      *string    `json:"description" validate:"omitempty,max=5000"`
	Deadline         *time.Time `json:"deadline"`
	ClearDeadline    bool       `json:"clear_deadline"`
	EstimatedMinutes *int       `json:"estimated_minutes" validate:"omitempty,min=0,max=1440"`
	Category         *string    `json:"category" validate:"omitempty,max=100"`
	ScheduledDate    *string    `json:"scheduled_date"`
	Recurrence       *string    `json:"recurrence" validate:"omitempty,recurrence"`
}

type completeTaskRequest struct {
	TimeSpentSeconds int `json:"time_spent_seconds" validate:"min=0,max=86400"`
}

// List returns tasks, optionally filtered to a date or including completed.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	includeCompleted := r.URL.Query().Get("include_completed") == "true"
	date := r.URL.Query().Get("date")
	if date != "" {
		if err := validation.ValidateDate(date); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
			return
		}
	}

	tasks, err := h.tasks.List(r.Context(), includeCompleted, date)
	if err != nil {
		h.logger.Error("list_tasks_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondJSON(w, http.StatusOK, tasks)
}

// Create adds a new manually-entered task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	now := h.now().UTC()
	scheduled := req.ScheduledDate
	if scheduled == "" {
		scheduled = now.Format(models.DateLayout)
	} else if err := validation.ValidateDate(scheduled); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	recurrence := models.Recurrence(req.Recurrence)
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}

	estimated := req.EstimatedMinutes
	if estimated == 0 {
		estimated = models.DefaultEstimatedMinutes
	}
	category := validation.SanitizeText(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	task := &models.Task{
		ID:               uuid.New(),
		Title:            validation.SanitizeText(req.Title),
		Description:      validation.SanitizeText(req.Description),
		Deadline:         req.Deadline,
		EstimatedMinutes: estimated,
		Category:         category,
		Source:           models.TaskSourceManual,
		CreatedAt:        now,
		ScheduledDate:    scheduled,
		Recurrence:       recurrence,
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		h.logger.Error("create_task_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	h.logger.Info("task_created", zap.String("task_id", task.ID.String()))
	respondJSON(w, http.StatusCreated, task)
}

// Get returns a single task.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task id")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Update applies partial changes to a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task id")
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if req.Title != nil {
		task.Title = validation.SanitizeText(*req.Title)
	}
	if req.Description != nil {
		task.Description = validation.SanitizeText(*req.Description)
	}
	if req.ClearDeadline {
		task.Deadline = nil
	} else if req.Deadline != nil {
		task.Deadline = req.Deadline
	}
	if req.EstimatedMinutes != nil {
		task.EstimatedMinutes = *req.EstimatedMinutes
	}
	if req.Category != nil {
		task.Category = validation.SanitizeText(*req.Category)
	}
	if req.ScheduledDate != nil {
		if err := validation.ValidateDate(*req.ScheduledDate); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
			return
		}
		task.ScheduledDate = *req.ScheduledDate
	}
	if req.Recurrence != nil {
		task.Recurrence = models.Recurrence(*req.Recurrence)
	}

	if err := h.tasks.Update(r.Context(), task); err != nil {
		h.logger.Error("update_task_failed", zap.String("task_id", id.String()), zap.Error(err))
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Delete removes a task and its sessions.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task id")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	h.logger.Info("task_deleted", zap.String("task_id", id.String()))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Complete marks a task done, records any reported time, and spawns the next
// occurrence for recurring tasks.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task id")
		return
	}

	req := completeTaskRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
		if err := validation.Validate.Struct(&req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
			return
		}
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if task.Completed {
		respondJSON(w, http.StatusOK, map[string]any{"task": task})
		return
	}

	now := h.now().UTC()
	task.Completed = true
	task.CompletedAt = &now
	task.TimeSpentSeconds += req.TimeSpentSeconds

	if err := h.tasks.Update(r.Context(), task); err != nil {
		h.logger.Error("complete_task_failed", zap.String("task_id", id.String()), zap.Error(err))
		respondStoreError(w, err)
		return
	}

	response := map[string]any{"task": task}
	next, err := h.rollover.SpawnRecurring(r.Context(), task)
	if err != nil {
		h.logger.Warn("spawn_recurring_failed", zap.String("task_id", id.String()), zap.Error(err))
	} else if next != nil {
		response["next_occurrence"] = next
	}

	h.logger.Info("task_completed", zap.String("task_id", id.String()))
	respondJSON(w, http.StatusOK, response)
}

// Start stamps the task's started_at without opening a pomodoro session. The
// timestamp is set once; starting again is a no-op.
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task id")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if task.StartedAt == nil {
		now := h.now().UTC()
		if err := h.tasks.MarkStarted(r.Context(), id, now); err != nil {
			h.logger.Error("start_task_failed", zap.String("task_id", id.String()), zap.Error(err))
			respondStoreError(w, err)
			return
		}
		task.StartedAt = &now
	}

	respondJSON(w, http.StatusOK, task)
}
