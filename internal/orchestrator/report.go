package orchestrator

import (
	"time"

	"github.com/lamim/contentforge/pkg/models"
)

// NodeType names the kind of backend call an ItemResult describes
type NodeType string

const (
	NodeSummary     NodeType = "summary"
	NodeQuestionSet NodeType = "question_set"
	NodeQuestions   NodeType = "questions"
)

// ItemStatus is the outcome of one node
type ItemStatus string

const (
	StatusSaved   ItemStatus = "saved"
	StatusFailed  ItemStatus = "failed"
	StatusSkipped ItemStatus = "skipped"
)

// ItemResult is the outcome of one persistence step
type ItemResult struct {
	Node      NodeType      `json:"node"`
	Kind      models.Kind   `json:"kind,omitempty"`
	Level     string        `json:"level,omitempty"`
	SetName   string        `json:"set_name,omitempty"`
	SetID     string        `json:"set_id,omitempty"`
	Items     int           `json:"items"`
	Status    ItemStatus    `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration_ns"`

	Err error `json:"-"`
}

func (i ItemResult) logAttrs() []any {
	attrs := []any{"node", i.Node}
	if i.Kind != "" {
		attrs = append(attrs, "kind", i.Kind, "level", i.Level, "set_name", i.SetName)
	}
	if i.SetID != "" {
		attrs = append(attrs, "set_id", i.SetID)
	}
	if i.Items > 0 {
		attrs = append(attrs, "items", i.Items)
	}
	if i.Err != nil {
		attrs = append(attrs, "error", i.Err)
	}
	return append(attrs, "duration", i.Duration)
}

// Report summarizes a persistence run
type Report struct {
	Progress models.SaveProgress
	Results  []ItemResult
	Stats    models.SessionStats
}

// Failures returns the results that failed or were skipped
func (r *Report) Failures() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if res.Status != StatusSaved {
			out = append(out, res)
		}
	}
	return out
}
