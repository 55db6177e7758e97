package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/focusflow/focusflow/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxDescriptionChars caps how much of a task description enters the prompt
	MaxDescriptionChars = 100

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the AIProvider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

const rankingSystemMessage = `You are a productivity expert. Analyze the given tasks and select the MOST IMPORTANT tasks for today.

Consider:
1. Deadlines (urgent tasks first)
2. Revenue/business impact
3. Dependencies (what unblocks other work)
4. Rollover count (tasks repeatedly postponed need attention)
5. Estimated time vs available work hours

Respond in JSON format:
{
    "selected_task_ids": ["id1", "id2", "id3"],
    "reason": "Brief explanation of prioritization logic",
    "task_priorities": {
        "id1": {"score": 95, "reason": "Critical deadline today"},
        "id2": {"score": 85, "reason": "High revenue impact"}
    }
}`

// RankTasks asks the model to select and score today's most important tasks.
func (p *OpenAIProvider) RankTasks(ctx context.Context, today string, tasks []*models.Task) (*RankingResult, error) {
	prompt := buildRankingPrompt(today, tasks)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(rankingSystemMessage),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := p.send(ctx, "rank_tasks", prompt, req)
	if err != nil {
		return nil, err
	}

	result, err := parseRankingResponse(content)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateInsights produces a narrative summary of a weekly report.
func (p *OpenAIProvider) GenerateInsights(ctx context.Context, reportSummary string) (string, error) {
	prompt := "Here is a weekly productivity report:\n\n" + reportSummary + `

Write 2-4 short observations about this week's productivity: what went well, what patterns stand out, and one concrete suggestion for next week. Be encouraging and specific. Plain text, no headings.`

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a supportive productivity coach. Be concise and concrete."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  messages,
		MaxTokens: openai.Int(500),
	}

	return p.send(ctx, "generate_insights", prompt, req)
}

// send issues a chat completion and returns the first choice's content,
// with debug-gated request/response logging.
func (p *OpenAIProvider) send(ctx context.Context, operation, prompt string, req openai.ChatCompletionNewParams) (string, error) {
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

// buildRankingPrompt serializes tasks into the ranking prompt.
func buildRankingPrompt(today string, tasks []*models.Task) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Today's date: %s\n\nTasks to prioritize:\n", today)
	for _, t := range tasks {
		deadline := "None"
		if t.Deadline != nil {
			deadline = t.Deadline.Format(time.RFC3339)
		}
		fmt.Fprintf(&buf, "- ID: %s, Title: %s, Deadline: %s, Est: %dmin, Category: %s, Rollover: %d, Desc: %s\n",
			t.ID, t.Title, deadline, t.EstimatedMinutes, t.Category, t.RolloverCount,
			TruncateString(t.Description, MaxDescriptionChars))
	}
	return buf.String()
}

// parseRankingResponse parses the model's JSON, tolerating surrounding prose
// by extracting the outermost JSON object.
func parseRankingResponse(content string) (*RankingResult, error) {
	result := &RankingResult{}
	raw := content
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		start := bytes.Index([]byte(raw), []byte("{"))
		end := bytes.LastIndex([]byte(raw), []byte("}"))
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("failed to parse ranking response: %w", err)
		}
		raw = raw[start : end+1]
		if err := json.Unmarshal([]byte(raw), result); err != nil {
			return nil, fmt.Errorf("failed to parse ranking response: %w", err)
		}
	}
	if len(result.SelectedTaskIDs) == 0 {
		return nil, errors.New("ranking response selected no tasks")
	}
	return result, nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (AIProvider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		return NewOpenAIProviderWithLogger(apiKey, config["base_url"], config["model"], nil, false), nil
	})
}
