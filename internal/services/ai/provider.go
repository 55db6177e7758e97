package ai

import (
	"context"

	"github.com/focusflow/focusflow/internal/models"
)

// TaskPriority is the per-task score and reason returned by a ranking call.
type TaskPriority struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// RankingResult is the structured output of a ranking call. SelectedTaskIDs
// is ordered most-important-first.
type RankingResult struct {
	SelectedTaskIDs []string                `json:"selected_task_ids"`
	Reason          string                  `json:"reason"`
	TaskPriorities  map[string]TaskPriority `json:"task_priorities"`
}

// AIProvider is the interface for AI providers
type AIProvider interface {
	// RankTasks asks the provider to pick and score the most important tasks
	// for the given date. The caller applies its own cap and clamping; the
	// provider is only trusted for ordering and rationale.
	RankTasks(ctx context.Context, today string, tasks []*models.Task) (*RankingResult, error)

	// GenerateInsights produces a short narrative summary from a serialized
	// weekly report.
	GenerateInsights(ctx context.Context, reportSummary string) (string, error)
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config map[string]string) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
