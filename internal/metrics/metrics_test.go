package metrics

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCollector_GenerationAttempts(t *testing.T) {
	c := NewCollector(testLogger())

	before := value(t, generationAttempts.WithLabelValues("truncated"))
	c.RecordGenerationAttempt("truncated")
	c.RecordGenerationAttempt("truncated")

	if got := value(t, generationAttempts.WithLabelValues("truncated")) - before; got != 2 {
		t.Errorf("truncated attempts delta = %v, want 2", got)
	}
}

func TestCollector_PersistNodes(t *testing.T) {
	c := NewCollector(testLogger())

	before := value(t, persistNodes.WithLabelValues("question_set", "error"))
	c.RecordPersistNode("question_set", false)
	if got := value(t, persistNodes.WithLabelValues("question_set", "error")) - before; got != 1 {
		t.Errorf("question_set errors delta = %v, want 1", got)
	}

	c.SetPersistItems(10, 7)
	if got := value(t, persistItems.WithLabelValues("saved")); got != 7 {
		t.Errorf("saved gauge = %v, want 7", got)
	}
	if got := value(t, persistItems.WithLabelValues("total")); got != 10 {
		t.Errorf("total gauge = %v, want 10", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.RecordRequest("backend", time.Second, true)
	c.RecordRateLimiterWait("backend", time.Millisecond)
	c.RecordGenerationAttempt("ok")
	c.RecordGeneration(time.Second)
	c.RecordPersistNode("summary", true)
	c.SetPersistItems(1, 1)
}
