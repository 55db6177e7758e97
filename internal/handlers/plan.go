package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/planner"
	"github.com/focusflow/focusflow/internal/validation"
)

// PlanHandler handles daily planning requests.
type PlanHandler struct {
	ranker    *planner.Ranker
	assembler *planner.Assembler
	rollover  *planner.Rollover
	logger    *zap.Logger
}

// NewPlanHandler creates a plan handler.
func NewPlanHandler(ranker *planner.Ranker, assembler *planner.Assembler, rollover *planner.Rollover, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		ranker:    ranker,
		assembler: assembler,
		rollover:  rollover,
		logger:    logger,
	}
}

// RegisterRoutes registers planning routes.
func (h *PlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/today", h.Today).Methods(http.MethodGet)
	r.HandleFunc("/prioritize", h.Prioritize).Methods(http.MethodPost)
	r.HandleFunc("/rollover", h.Rollover).Methods(http.MethodPost)
}

// Today returns the resolved plan for today.
func (h *PlanHandler) Today(w http.ResponseWriter, r *http.Request) {
	view, err := h.assembler.Today(r.Context())
	if err != nil {
		h.logger.Error("today_view_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Prioritize builds and stores a fresh plan for today.
func (h *PlanHandler) Prioritize(w http.ResponseWriter, r *http.Request) {
	result, err := h.ranker.Prioritize(r.Context())
	if err != nil {
		h.logger.Error("prioritize_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Rollover moves unfinished past tasks onto a target date (default today).
func (h *PlanHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	asOf := r.URL.Query().Get("date")
	if asOf != "" {
		if err := validation.ValidateDate(asOf); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
			return
		}
	}

	result, err := h.rollover.Run(r.Context(), asOf)
	if err != nil {
		h.logger.Error("rollover_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
