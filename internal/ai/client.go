package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	"github.com/Isaias789672/chef-ai-recipes/internal/logging"
	"github.com/Isaias789672/chef-ai-recipes/internal/monitoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Client errors
var (
	ErrNotConfigured       = errors.New("ai gateway key not configured")
	ErrRateLimited         = errors.New("ai gateway rate limited")
	ErrInsufficientCredits = errors.New("ai gateway credits exhausted")
	ErrEmptyCompletion     = errors.New("no response from ai gateway")
	ErrInvalidCompletion   = errors.New("ai gateway returned unparseable content")
	ErrGateway             = errors.New("ai gateway error")
)

const (
	minTimeout = 5 * time.Second
	maxTimeout = 120 * time.Second
)

// Client calls the OpenAI-compatible chat completions gateway that backs
// the recipe chat, recipe generation and fridge-photo analysis endpoints.
type Client struct {
	cfg        *config.AIConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

// NewClient creates a new AI gateway client
func NewClient(cfg *config.AIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout < minTimeout {
		timeout = minTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	logger := logging.NewLogger("ai")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-gateway",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("circuit_breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// ChatRecipe sends a free-form chat message to the Chef AI assistant.
// When the model's answer is not the expected JSON, the raw content is
// returned as a plain message rather than failing the request.
func (c *Client) ChatRecipe(ctx context.Context, message string) (*ChatResult, error) {
	content, err := c.complete(ctx, "chat", []chatMessage{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: message},
	}, c.cfg.MaxTokens)
	if err != nil {
		return nil, err
	}

	var result ChatResult
	if err := json.Unmarshal([]byte(stripJSONFences(content)), &result); err != nil {
		c.logger.Error().Str("content", logging.SanitizeForLog(content, 500)).Msg("Failed to parse AI chat response")
		return &ChatResult{Message: content}, nil
	}

	if result.Recipe != nil {
		result.Recipe.ID = uuid.New()
	}
	return &result, nil
}

// GenerateRecipe creates a recipe from an ingredient list under the given
// diet/time/goal filters
func (c *Client) GenerateRecipe(ctx context.Context, ingredients []string, filters Filters) (*GenerateResult, error) {
	content, err := c.complete(ctx, "generate", []chatMessage{
		{Role: "system", Content: generateSystemPrompt(ingredients, filters)},
		{Role: "user", Content: "Crie uma receita com os ingredientes disponíveis."},
	}, c.cfg.MaxTokens)
	if err != nil {
		return nil, err
	}

	var result GenerateResult
	if err := json.Unmarshal([]byte(stripJSONFences(content)), &result); err != nil {
		c.logger.Error().Str("content", logging.SanitizeForLog(content, 500)).Msg("Failed to parse AI recipe response")
		return nil, ErrInvalidCompletion
	}

	if result.Recipe != nil {
		result.Recipe.ID = uuid.New()
	}
	return &result, nil
}

// AnalyzeFridge compares a fridge/pantry photo against the user's current
// shopping list and returns the items missing from the photo. The image
// is base64, with or without a data: prefix.
func (c *Client) AnalyzeFridge(ctx context.Context, image string, currentItems []string) (*AnalyzeResult, error) {
	url := image
	if !strings.HasPrefix(image, "data:") {
		url = "data:image/jpeg;base64," + image
	}

	content, err := c.complete(ctx, "analyze", []chatMessage{
		{Role: "system", Content: analyzeSystemPrompt(currentItems)},
		{Role: "user", Content: []contentPart{
			{Type: "text", Text: analyzeUserPrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: url}},
		}},
	}, 1000)
	if err != nil {
		return nil, err
	}

	var result AnalyzeResult
	if err := json.Unmarshal([]byte(stripJSONFences(content)), &result); err != nil {
		c.logger.Error().Str("content", logging.SanitizeForLog(content, 500)).Msg("Failed to parse AI analyze response")
		return nil, ErrInvalidCompletion
	}
	return &result, nil
}

// complete performs one chat completion call through the circuit breaker
// and returns the first choice's content
func (c *Client) complete(ctx context.Context, operation string, messages []chatMessage, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	m := monitoring.Get()
	start := time.Now()

	content, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doComplete(ctx, messages, maxTokens)
	})

	latency := time.Since(start)
	m.AIGatewayLatency.WithLabelValues(operation, c.cfg.Model).Observe(latency.Seconds())

	if err != nil {
		m.AIGatewayRequests.WithLabelValues(operation, c.cfg.Model, "error").Inc()
		m.AIGatewayErrors.WithLabelValues(operation, errorType(err)).Inc()
		logging.LogAICall("", operation, c.cfg.Model, latency, "error")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: circuit open", ErrGateway)
		}
		return "", err
	}

	m.AIGatewayRequests.WithLabelValues(operation, c.cfg.Model, "ok").Inc()
	logging.LogAICall("", operation, c.cfg.Model, latency, "ok")

	return content.(string), nil
}

func (c *Client) doComplete(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", logging.SanitizeForLog(string(errText), 500)).
			Msg("AI gateway error")

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		case http.StatusPaymentRequired:
			return "", ErrInsufficientCredits
		default:
			return "", fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
		}
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}

// errorType buckets an error for the error-type metric label
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInsufficientCredits):
		return "insufficient_credits"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty_completion"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "gateway"
	}
}

// stripJSONFences removes markdown code fences the model sometimes wraps
// its JSON answer in
func stripJSONFences(content string) string {
	content = strings.ReplaceAll(content, "```json\n", "")
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```\n", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
