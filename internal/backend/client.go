// Package backend is the REST client for the content backend: summaries,
// question sets and the questions attached to them.
package backend

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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lamim/contentforge/internal/api"
	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/internal/metrics"
	"github.com/lamim/contentforge/pkg/models"
)

// DefaultHTTPTimeout is the default timeout for backend requests
const DefaultHTTPTimeout = 30 * time.Second

// ErrMissingSetID is returned when a question set response carries no id
var ErrMissingSetID = errors.New("question set response has no _id")

// RequestError wraps a failed backend call with what was being attempted
type RequestError struct {
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s (request %s): %v", e.Method, e.Path, e.RequestID, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client talks to the content REST backend with bearer authentication
type Client struct {
	httpClient      *http.Client
	baseURL         string
	token           string
	rateLimiterPool *api.RateLimiterPool
	rateLimit       int
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

// NewClient creates a backend client. pool may be shared with the generation client.
func NewClient(cfg config.BackendConfig, token string, pool *api.RateLimiterPool, logger *slog.Logger, opts ...Option) *Client {
	timeout := DefaultHTTPTimeout
	if cfg.HTTPTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	}
	if pool == nil {
		pool = api.NewRateLimiterPool()
	}
	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		token:           token,
		rateLimiterPool: pool,
		rateLimit:       cfg.RateLimitPerMinute,
		logger:          logger.With("component", "backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type summaryRequest struct {
	Content string `json:"content"`
}

type questionSetRequest struct {
	Name       string `json:"name"`
	Level      string `json:"level"`
	Type       string `json:"type"`
	IsWorkbook bool   `json:"isWorkbook"`
}

type questionSetResponse struct {
	QuestionSet struct {
		ID string `json:"_id"`
	} `json:"questionSet"`
}

type objectiveQuestionPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Difficulty    string   `json:"difficulty"`
}

type subjectiveQuestionPayload struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Keywords   string `json:"keywords"`
	Difficulty string `json:"difficulty"`
}

type questionsRequest[Q any] struct {
	Questions []Q `json:"questions"`
}

// AssetsPath returns the collection segment for a target, e.g. "chapters" or "workbook-chapters"
func AssetsPath(target models.PersistTarget) string {
	path := string(target.EntityType) + "s"
	if target.IsWorkbook {
		path = "workbook-" + path
	}
	return path
}

// CreateSummary posts the summary text for the target entity
func (c *Client) CreateSummary(ctx context.Context, target models.PersistTarget, content string) error {
	path := fmt.Sprintf("/%s/%s/summaries", AssetsPath(target), url.PathEscape(target.EntityID))
	return c.post(ctx, path, summaryRequest{Content: content}, nil)
}

// CreateQuestionSet creates an empty question set and returns its server id
func (c *Client) CreateQuestionSet(ctx context.Context, kind models.Kind, target models.PersistTarget, name string, level models.Level) (string, error) {
	path := fmt.Sprintf("/%s-assets/%s/%s/question-sets", kind, target.EntityType, url.PathEscape(target.EntityID))
	body := questionSetRequest{
		Name:       name,
		Level:      level.String(),
		Type:       string(kind),
		IsWorkbook: target.IsWorkbook,
	}

	var resp questionSetResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return "", err
	}
	if resp.QuestionSet.ID == "" {
		return "", fmt.Errorf("POST %s: %w", path, ErrMissingSetID)
	}
	return resp.QuestionSet.ID, nil
}

// AddObjectiveQuestions attaches objective questions to a set in one call
func (c *Client) AddObjectiveQuestions(ctx context.Context, setID string, level models.Level, questions []models.ObjectiveQuestion) error {
	payload := make([]objectiveQuestionPayload, len(questions))
	for i, q := range questions {
		payload[i] = objectiveQuestionPayload{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Difficulty:    level.Difficulty(),
		}
	}
	path := fmt.Sprintf("/%s-assets/question-sets/%s/questions", models.KindObjective, url.PathEscape(setID))
	return c.post(ctx, path, questionsRequest[objectiveQuestionPayload]{Questions: payload}, nil)
}

// AddSubjectiveQuestions attaches subjective questions to a set in one call
func (c *Client) AddSubjectiveQuestions(ctx context.Context, setID string, level models.Level, questions []models.SubjectiveQuestion) error {
	payload := make([]subjectiveQuestionPayload, len(questions))
	for i, q := range questions {
		payload[i] = subjectiveQuestionPayload{
			Question:   q.Question,
			Answer:     q.Answer,
			Keywords:   q.Keywords,
			Difficulty: level.Difficulty(),
		}
	}
	path := fmt.Sprintf("/%s-assets/question-sets/%s/questions", models.KindSubjective, url.PathEscape(setID))
	return c.post(ctx, path, questionsRequest[subjectiveQuestionPayload]{Questions: payload}, nil)
}

// post sends body as JSON and decodes a 2xx response into out when out is non-nil
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	requestID := uuid.New().String()
	wrap := func(err error) error {
		return &RequestError{Method: http.MethodPost, Path: path, RequestID: requestID, Err: err}
	}

	waitStart := time.Now()
	if err := c.rateLimiterPool.Wait(ctx, c.baseURL, c.rateLimit); err != nil {
		return wrap(fmt.Errorf("rate limiter wait failed: %w", err))
	}
	c.metrics.RecordRateLimiterWait("backend", time.Since(waitStart))

	data, release, err := api.EncodeJSON(body)
	if err != nil {
		return wrap(fmt.Errorf("failed to marshal request: %w", err))
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return wrap(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest("backend", time.Since(start), false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return wrap(ctxErr)
		}
		return wrap(&api.APIError{Message: fmt.Sprintf("request failed: %v", err), Retryable: true})
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.metrics.RecordRequest("backend", time.Since(start), ok && err == nil)
	if err != nil {
		return wrap(fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("Backend response",
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if !ok {
		return wrap(api.NewAPIError(resp.StatusCode, respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return wrap(fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return nil
}
