// Package generator drives one content generation: build the prompt, call
// the endpoint, parse the output and repeat the call while the output is
// truncated, up to a fixed number of retries.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lamim/contentforge/internal/metrics"
	"github.com/lamim/contentforge/internal/parser"
	"github.com/lamim/contentforge/internal/prompt"
	"github.com/lamim/contentforge/pkg/models"
)

// DefaultMaxTruncationRetries is the number of extra calls made for truncated output
const DefaultMaxTruncationRetries = 3

// TextGenerator sends a prompt and returns the raw generated text
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenerationError is a fatal failure to obtain text from the endpoint. It is never retried.
type GenerationError struct {
	Attempt int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on attempt %d: %v", e.Attempt, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Result is the content produced by Generate
type Result struct {
	parser.Result
	// Attempts is the number of endpoint calls made
	Attempts int
	// Raw is the text returned by the final call
	Raw string
	// Mismatches lists generated counts that differ from the request
	Mismatches []string
}

// Generator produces GeneratedContent for a request
type Generator struct {
	client     TextGenerator
	builder    *prompt.Builder
	maxRetries int
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxTruncationRetries overrides the truncation retry cap. Negative values are treated as 0.
func WithMaxTruncationRetries(n int) Option {
	return func(g *Generator) { g.maxRetries = max(0, n) }
}

// WithMetrics records attempt outcomes and durations
func WithMetrics(m *metrics.Collector) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a Generator
func New(client TextGenerator, builder *prompt.Builder, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:     client,
		builder:    builder,
		maxRetries: DefaultMaxTruncationRetries,
		logger:     logger.With("component", "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate requests content for req. Truncated output is requested again
// with the identical prompt until it is complete or the retry cap is hit;
// in the latter case the truncation placeholder is returned without error.
// Malformed output is returned as-is with Result.Err set. Only a failed
// call to the endpoint produces an error.
func (g *Generator) Generate(ctx context.Context, req models.GenerationRequest) (*Result, error) {
	start := time.Now()
	defer func() { g.metrics.RecordGeneration(time.Since(start)) }()

	text := g.builder.Build(req)
	g.logger.Info("Requesting content generation",
		"entity_type", req.EntityType,
		"title", req.Title,
		"prompt_chars", len(text),
		"max_retries", g.maxRetries)

	for attempt := 0; ; attempt++ {
		raw, err := g.client.GenerateText(ctx, text)
		if err != nil {
			g.metrics.RecordGenerationAttempt("error")
			return nil, &GenerationError{Attempt: attempt + 1, Err: err}
		}

		parsed := parser.Parse(raw)
		g.metrics.RecordGenerationAttempt(string(parsed.Status()))

		if !parsed.IsTruncated || attempt >= g.maxRetries {
			res := &Result{Result: parsed, Attempts: attempt + 1, Raw: raw}
			g.finish(req, res)
			return res, nil
		}

		g.logger.Warn("Output truncated, retrying",
			"attempt", attempt+1,
			"max_retries", g.maxRetries,
			"error", parsed.Err)

		if err := ctx.Err(); err != nil {
			return nil, &GenerationError{Attempt: attempt + 1, Err: err}
		}
	}
}

func (g *Generator) finish(req models.GenerationRequest, res *Result) {
	switch res.Status() {
	case models.DraftTruncated:
		g.logger.Warn("Output still truncated after retries, returning placeholder",
			"attempts", res.Attempts,
			"error", res.Err)
		return
	case models.DraftMalformed:
		g.logger.Error("Model output is malformed, not retrying",
			"attempts", res.Attempts,
			"error", res.Err)
		return
	}

	res.Mismatches = CountMismatches(req, res.Content)
	for _, m := range res.Mismatches {
		g.logger.Warn("Count mismatch", "detail", m)
	}

	g.logger.Info("Content generated",
		"attempts", res.Attempts,
		"has_summary", res.Content.HasSummary(),
		"items", countItems(res.Content))
}

// CountMismatches compares generated set and question counts with the request.
// The result is advisory only.
func CountMismatches(req models.GenerationRequest, content models.GeneratedContent) []string {
	var out []string
	for _, kind := range models.Kinds {
		configs := req.LevelConfigs(kind)
		for _, l := range models.Levels {
			want := configs[l]
			if got := content.SetCount(kind, l); got != want.Sets {
				out = append(out, fmt.Sprintf("%s %s: requested %d sets, got %d", kind, l, want.Sets, got))
				continue
			}
			if got, wantQ := content.QuestionCount(kind, l), want.Sets*want.QuestionsPerSet; got != wantQ {
				out = append(out, fmt.Sprintf("%s %s: requested %d questions, got %d", kind, l, wantQ, got))
			}
		}
	}
	return out
}

func countItems(c models.GeneratedContent) int {
	n := 0
	for _, kind := range models.Kinds {
		for _, l := range models.Levels {
			n += c.QuestionCount(kind, l)
		}
	}
	return n
}
