package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/planner"
)

// StatsHandler handles daily stats and weekly reports.
type StatsHandler struct {
	assembler *planner.Assembler
	reporter  *planner.Reporter
	logger    *zap.Logger
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(assembler *planner.Assembler, reporter *planner.Reporter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		assembler: assembler,
		reporter:  reporter,
		logger:    logger,
	}
}

// RegisterRoutes registers stats routes.
func (h *StatsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/reports/weekly", h.WeeklyReport).Methods(http.MethodGet)
	r.HandleFunc("/reports/generate-insights", h.GenerateInsights).Methods(http.MethodPost)
}

// Stats returns today's activity summary.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.assembler.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// WeeklyReport returns the seven-day report. insights=true additionally asks
// the AI provider for a narrative; its failure never fails the report.
func (h *StatsHandler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.Weekly(r.Context())
	if err != nil {
		h.logger.Error("weekly_report_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	if r.URL.Query().Get("insights") == "true" {
		h.reporter.AddInsights(r.Context(), report)
	}

	respondJSON(w, http.StatusOK, report)
}

// GenerateInsights builds the weekly report and asks the AI provider for a
// narrative. Without a provider, or on provider failure, the report comes
// back with empty insights rather than an error.
func (h *StatsHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.Weekly(r.Context())
	if err != nil {
		h.logger.Error("weekly_report_failed", zap.Error(err))
		respondStoreError(w, err)
		return
	}

	h.reporter.AddInsights(r.Context(), report)

	respondJSON(w, http.StatusOK, report)
}
