// Package orchestrator saves generated content to the backend as a fixed
// sequence of dependent calls, isolating failures per node.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lamim/contentforge/internal/metrics"
	"github.com/lamim/contentforge/internal/progress"
	"github.com/lamim/contentforge/pkg/models"
)

// Backend is the REST surface the orchestrator writes to
type Backend interface {
	CreateSummary(ctx context.Context, target models.PersistTarget, content string) error
	CreateQuestionSet(ctx context.Context, kind models.Kind, target models.PersistTarget, name string, level models.Level) (string, error)
	AddObjectiveQuestions(ctx context.Context, setID string, level models.Level, questions []models.ObjectiveQuestion) error
	AddSubjectiveQuestions(ctx context.Context, setID string, level models.Level, questions []models.SubjectiveQuestion) error
}

// ResultSink receives every item outcome as soon as it is known
type ResultSink interface {
	WriteResult(ItemResult) error
}

// Orchestrator persists GeneratedContent. Calls are issued one at a time.
type Orchestrator struct {
	backend Backend
	sink    ResultSink
	metrics *metrics.Collector
	logger  *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithResultSink streams item outcomes to sink
func WithResultSink(sink ResultSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithMetrics records node outcomes and progress
func WithMetrics(m *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates a new orchestrator
func New(backend Backend, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		logger:  logger.With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the state of one Persist call
type run struct {
	ctx     context.Context
	target  models.PersistTarget
	tracker *progress.Tracker
	report  *Report
}

// Persist saves content under target. The summary goes first, then for
// each kind and level every set is created and its questions attached in
// one bulk call. A failed node is recorded and its siblings still run; a
// failed set creation skips only that set's questions. onProgress, if
// non-nil, observes every progress change.
//
// The returned error is non-nil only for an invalid target or a cancelled
// context; in the latter case the partial report is returned as well.
func (o *Orchestrator) Persist(
	ctx context.Context,
	content models.GeneratedContent,
	target models.PersistTarget,
	onProgress progress.Observer,
) (*Report, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	r := &run{
		ctx:     ctx,
		target:  target,
		tracker: progress.NewTracker(content),
		report:  &Report{},
	}
	r.report.Stats.StartTime = time.Now()
	r.report.Stats.TotalItems = r.tracker.Snapshot().Total

	stopMetrics := r.tracker.Subscribe(func(p models.SaveProgress) {
		o.metrics.SetPersistItems(p.Total, p.Current)
	})
	defer stopMetrics()
	if onProgress != nil {
		defer r.tracker.Subscribe(onProgress)()
	}

	o.logger.Info("Starting persistence",
		"entity_type", target.EntityType,
		"entity_id", target.EntityID,
		"workbook", target.IsWorkbook,
		"total_items", r.report.Stats.TotalItems)

	err := o.walk(r, content)

	snapshot := r.tracker.Snapshot()
	stats := &r.report.Stats
	stats.SavedItems = snapshot.Current
	stats.EndTime = time.Now()
	stats.TotalDuration = stats.EndTime.Sub(stats.StartTime)

	if err != nil {
		r.tracker.Finish(fmt.Sprintf("Cancelled: saved %d of %d items", snapshot.Current, snapshot.Total))
		r.report.Progress = r.tracker.Snapshot()
		o.logger.Warn("Persistence cancelled",
			"saved_items", snapshot.Current,
			"total_items", snapshot.Total,
			"error", err)
		return r.report, err
	}

	status := fmt.Sprintf("Completed: saved %d of %d items", snapshot.Current, snapshot.Total)
	if stats.FailedNodes > 0 {
		status = fmt.Sprintf("Completed with %d failed step(s): saved %d of %d items",
			stats.FailedNodes, snapshot.Current, snapshot.Total)
	}
	r.tracker.Finish(status)
	r.report.Progress = r.tracker.Snapshot()

	o.logger.Info("Persistence finished",
		"saved_items", snapshot.Current,
		"total_items", snapshot.Total,
		"failed_nodes", stats.FailedNodes,
		"skipped_nodes", stats.SkippedNodes,
		"duration", stats.TotalDuration)

	return r.report, nil
}

// walk visits every node in the fixed order. It only returns an error when ctx is done.
func (o *Orchestrator) walk(r *run, content models.GeneratedContent) error {
	if content.HasSummary() {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		o.saveSummary(r, content.Summary)
	}

	for _, kind := range models.Kinds {
		for _, level := range models.Levels {
			switch kind {
			case models.KindObjective:
				for _, set := range content.Objective[level] {
					questions := set.Questions
					add := func(ctx context.Context, setID string) error {
						return o.backend.AddObjectiveQuestions(ctx, setID, level, questions)
					}
					if err := o.saveSet(r, kind, level, set.SetName, len(questions), add); err != nil {
						return err
					}
				}
			case models.KindSubjective:
				for _, set := range content.Subjective[level] {
					questions := set.Questions
					add := func(ctx context.Context, setID string) error {
						return o.backend.AddSubjectiveQuestions(ctx, setID, level, questions)
					}
					if err := o.saveSet(r, kind, level, set.SetName, len(questions), add); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (o *Orchestrator) saveSummary(r *run, summary string) {
	r.tracker.SetStatus("Saving summary...")

	start := time.Now()
	err := o.backend.CreateSummary(r.ctx, r.target, summary)
	item := ItemResult{Node: NodeSummary, Items: 1}
	o.record(r, &item, start, err)

	if err != nil {
		r.tracker.SetStatus("Failed to save summary")
		return
	}
	r.tracker.Advance(1, "Summary saved")
}

// saveSet creates one question set and attaches its questions
func (o *Orchestrator) saveSet(
	r *run,
	kind models.Kind,
	level models.Level,
	name string,
	questions int,
	add func(ctx context.Context, setID string) error,
) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	label := fmt.Sprintf("%s %s set %q", kind, level, name)
	r.tracker.SetStatus("Creating " + label + "...")

	start := time.Now()
	setID, err := o.backend.CreateQuestionSet(r.ctx, kind, r.target, name, level)
	created := ItemResult{Node: NodeQuestionSet, Kind: kind, Level: level.String(), SetName: name, SetID: setID}
	o.record(r, &created, start, err)

	if err != nil {
		r.tracker.SetStatus("Failed to create " + label)
		if questions > 0 {
			skipped := ItemResult{
				Node:    NodeQuestions,
				Kind:    kind,
				Level:   level.String(),
				SetName: name,
				Items:   questions,
				Status:  StatusSkipped,
				Error:   "parent question set was not created",
			}
			o.record(r, &skipped, time.Now(), nil)
		}
		return nil
	}

	if questions == 0 {
		return nil
	}

	if err := r.ctx.Err(); err != nil {
		return err
	}

	r.tracker.SetStatus(fmt.Sprintf("Adding %d question(s) to %s...", questions, label))
	start = time.Now()
	err = add(r.ctx, setID)
	added := ItemResult{Node: NodeQuestions, Kind: kind, Level: level.String(), SetName: name, SetID: setID, Items: questions}
	o.record(r, &added, start, err)

	if err != nil {
		r.tracker.SetStatus("Failed to add questions to " + label)
		return nil
	}
	r.tracker.Advance(questions, fmt.Sprintf("Saved %d question(s) to %s", questions, label))
	return nil
}

// record finalizes an item, logs it and forwards it to the report, sink and metrics
func (o *Orchestrator) record(r *run, item *ItemResult, start time.Time, err error) {
	item.Timestamp = start
	item.Duration = time.Since(start)

	switch {
	case item.Status == StatusSkipped:
		r.report.Stats.SkippedNodes++
		o.logger.Warn("Skipping questions of failed set",
			"kind", item.Kind,
			"level", item.Level,
			"set_name", item.SetName,
			"questions", item.Items)
	case err != nil:
		item.Status = StatusFailed
		item.Err = err
		item.Error = err.Error()
		r.report.Stats.FailedNodes++
		o.metrics.RecordPersistNode(string(item.Node), false)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			o.logger.Warn("Persistence step interrupted", item.logAttrs()...)
		} else {
			o.logger.Error("Persistence step failed", item.logAttrs()...)
		}
	default:
		item.Status = StatusSaved
		o.metrics.RecordPersistNode(string(item.Node), true)
		o.logger.Debug("Persistence step succeeded", item.logAttrs()...)
	}

	r.report.Results = append(r.report.Results, *item)

	if o.sink != nil {
		if err := o.sink.WriteResult(*item); err != nil {
			o.logger.Warn("Failed to write result", "error", err)
		}
	}
}

func validateTarget(target models.PersistTarget) error {
	if _, err := models.ParseEntityType(string(target.EntityType)); err != nil {
		return fmt.Errorf("invalid persist target: %w", err)
	}
	if target.EntityID == "" {
		return fmt.Errorf("invalid persist target: entity id is required")
	}
	return nil
}
