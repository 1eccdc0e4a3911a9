package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentforge_request_duration_seconds",
			Help:    "Outbound request duration in seconds by client",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"client", "status"}, // client: "generation"/"backend"
	)

	rateLimiterWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentforge_rate_limiter_wait_duration_seconds",
			Help:    "Rate limiter wait duration in seconds by client",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"client"},
	)

	// Generation metrics
	generationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentforge_generation_attempts_total",
			Help: "Generation endpoint calls by parse outcome",
		},
		[]string{"outcome"}, // "ok"/"truncated"/"malformed"/"error"
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contentforge_generation_duration_seconds",
			Help:    "End-to-end generation duration including truncation retries",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~500s
		},
	)

	// Persistence metrics
	persistNodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentforge_persist_nodes_total",
			Help: "Persistence calls by node type and status",
		},
		[]string{"node", "status"}, // node: "summary"/"question_set"/"questions"
	)

	persistItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contentforge_persist_items",
			Help: "Items of the current persistence run",
		},
		[]string{"state"}, // "total"/"saved"
	)
)

// Collector provides convenience methods for recording metrics.
// A nil *Collector records nothing.
type Collector struct {
	logger *slog.Logger
}

// NewCollector creates a new metrics collector
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger: logger.With("component", "metrics"),
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRequest records an outbound request duration
func (c *Collector) RecordRequest(client string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	requestDuration.WithLabelValues(client, statusLabel(success)).Observe(duration.Seconds())
}

// RecordRateLimiterWait records rate limiter wait time
func (c *Collector) RecordRateLimiterWait(client string, duration time.Duration) {
	if c == nil {
		return
	}
	rateLimiterWaitDuration.WithLabelValues(client).Observe(duration.Seconds())
}

// RecordGenerationAttempt counts one generation call by outcome
func (c *Collector) RecordGenerationAttempt(outcome string) {
	if c == nil {
		return
	}
	generationAttempts.WithLabelValues(outcome).Inc()
}

// RecordGeneration records the duration of a complete generation
func (c *Collector) RecordGeneration(duration time.Duration) {
	if c == nil {
		return
	}
	generationDuration.Observe(duration.Seconds())
}

// RecordPersistNode counts one persistence call
func (c *Collector) RecordPersistNode(node string, success bool) {
	if c == nil {
		return
	}
	persistNodes.WithLabelValues(node, statusLabel(success)).Inc()
}

// SetPersistItems publishes the progress counters of the running persistence
func (c *Collector) SetPersistItems(total, saved int) {
	if c == nil {
		return
	}
	persistItems.WithLabelValues("total").Set(float64(total))
	persistItems.WithLabelValues("saved").Set(float64(saved))
}

// Serve exposes /metrics on addr until ctx is cancelled
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	c.logger.Info("Metrics endpoint listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
