package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/internal/metrics"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests
const DefaultHTTPTimeout = 120 * time.Second

// ErrNoContent is returned when a successful response lacks
// candidates[0].content.parts[0].text
var ErrNoContent = errors.New("response has no generated text")

// Client sends prompts to a Gemini-style generateContent endpoint.
// It never retries; callers decide what is worth repeating.
type Client struct {
	httpClient      *http.Client
	rateLimiterPool *RateLimiterPool
	cfg             config.GenerationConfig
	apiKey          string
	metrics         *metrics.Collector
	logger          *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithMetrics records request and rate limiter timings
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new API client
func NewClient(cfg config.GenerationConfig, apiKey string, pool *RateLimiterPool, logger *slog.Logger, opts ...Option) *Client {
	timeout := DefaultHTTPTimeout
	if cfg.HTTPTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	}
	if pool == nil {
		pool = NewRateLimiterPool()
	}
	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		rateLimiterPool: pool,
		cfg:             cfg,
		apiKey:          apiKey,
		logger:          logger.With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRequest builds the request body for a single-turn prompt from the configured parameters
func (c *Client) NewRequest(prompt string) GenerateContentRequest {
	req := GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: GenerationConfig{
			Temperature:     c.cfg.Temperature,
			TopK:            c.cfg.TopK,
			TopP:            c.cfg.TopP,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}
	for _, category := range c.cfg.SafetyCategories {
		req.SafetySettings = append(req.SafetySettings, SafetySetting{
			Category:  category,
			Threshold: c.cfg.SafetyThreshold,
		})
	}
	return req
}

// GenerateText sends prompt and returns the generated text of the first candidate
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.GenerateContent(ctx, c.NewRequest(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// GenerateContent sends a generateContent request
func (c *Client) GenerateContent(ctx context.Context, req GenerateContentRequest) (*GenerateContentResponse, error) {
	waitStart := time.Now()
	if err := c.rateLimiterPool.Wait(ctx, c.cfg.Endpoint, c.cfg.RateLimitPerMinute); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	c.metrics.RecordRateLimiterWait("generation", time.Since(waitStart))

	endpoint, err := c.endpointURL()
	if err != nil {
		return nil, err
	}

	body, release, err := EncodeJSON(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	defer release()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.apiKey == "" {
		c.logger.Warn("API request without key", "endpoint", c.cfg.Endpoint)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest("generation", time.Since(start), false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &APIError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.metrics.RecordRequest("generation", time.Since(start), httpResp.StatusCode == http.StatusOK)
	c.logger.Debug("Generation response",
		"status", httpResp.StatusCode,
		"bytes", len(respBody),
		"duration", time.Since(start))

	if httpResp.StatusCode != http.StatusOK {
		return nil, NewAPIError(httpResp.StatusCode, respBody)
	}

	var resp GenerateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// endpointURL appends the API key as the key query parameter
func (c *Client) endpointURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid generation endpoint: %w", err)
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("key", c.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Text returns candidates[0].content.parts[0].text
func (r *GenerateContentResponse) Text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrNoContent, r.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrNoContent)
	}
	cand := r.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: candidate has no parts (finish reason %q)", ErrNoContent, cand.FinishReason)
	}
	return cand.Content.Parts[0].Text, nil
}

// isStatusCodeRetryable reports statuses a later, separate call may succeed on
func isStatusCodeRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// APIError represents an error returned by an HTTP endpoint
type APIError struct {
	Message    string
	StatusCode int
	Status     string
	Retryable  bool
}

// NewAPIError builds an APIError from a non-2xx response body
func NewAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Retryable:  isStatusCodeRetryable(statusCode),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		apiErr.Status = errResp.Error.Status
		return apiErr
	}

	var plain struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Message != "" {
		apiErr.Message = plain.Message
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("request failed with status %d: %s", statusCode, truncateBody(body))
	return apiErr
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
