package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lamim/contentforge/internal/api"
	"github.com/lamim/contentforge/internal/backend"
	"github.com/lamim/contentforge/internal/generator"
	"github.com/lamim/contentforge/internal/orchestrator"
	"github.com/lamim/contentforge/internal/prompt"
	"github.com/lamim/contentforge/internal/writer"
	"github.com/lamim/contentforge/pkg/models"
)

// generateDraft runs generation for req and writes the draft artifacts into the session
func generateDraft(ctx context.Context, a *app, req models.GenerationRequest) (*models.Draft, error) {
	if err := a.secrets.RequireGenerationKey(); err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder(a.cfg.PromptTemplates, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt templates: %w", err)
	}

	client := api.NewClient(a.cfg.Generation, a.secrets.GenerationAPIKey, a.pool, a.logger, api.WithMetrics(a.metrics))
	gen := generator.New(client, builder, a.logger,
		generator.WithMaxTruncationRetries(a.cfg.Generation.MaxTruncationRetries),
		generator.WithMetrics(a.metrics))

	res, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	draft := &models.Draft{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Status:    res.Status(),
		Attempts:  res.Attempts,
		Request:   req,
		Content:   res.Content,
	}

	if err := writer.SaveDraft(a.session.GetDraftPath(), draft); err != nil {
		return nil, err
	}
	if err := writer.WriteText(a.session.GetPreviewPath(), res.Formatted); err != nil {
		return nil, err
	}
	if err := writer.WriteText(a.session.GetRawOutputPath(), res.Raw); err != nil {
		a.logger.Warn("Failed to save raw output", "error", err)
	}

	a.logger.Info("Draft saved",
		"draft_id", draft.ID,
		"status", draft.Status,
		"attempts", draft.Attempts,
		"path", a.session.GetDraftPath())
	if res.Err != nil {
		a.logger.Warn("Draft needs attention before persisting",
			"draft_id", draft.ID,
			"status", draft.Status,
			"error", res.Err)
	}

	return draft, nil
}

// persistDraft saves draft under the target, streaming outcomes to the session report
func persistDraft(ctx context.Context, a *app, draft *models.Draft, target models.PersistTarget) (*orchestrator.Report, error) {
	if !draft.Persistable() && !force {
		return nil, fmt.Errorf("draft %s is %s; review it and pass --force to persist anyway", draft.ID, draft.Status)
	}
	if err := a.secrets.RequireBackendToken(); err != nil {
		return nil, err
	}

	for _, problem := range draft.Content.Problems() {
		a.logger.Warn("Content problem", "draft_id", draft.ID, "problem", problem)
	}

	reportWriter, err := writer.NewReportWriter(a.session, a.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reportWriter.Close(); err != nil {
			a.logger.Error("failed to close report writer", "error", err)
		}
	}()

	client := backend.NewClient(a.cfg.Backend, a.secrets.BackendToken, a.pool, a.logger, backend.WithMetrics(a.metrics))
	orch := orchestrator.New(client, a.logger,
		orchestrator.WithResultSink(reportWriter),
		orchestrator.WithMetrics(a.metrics))

	observer, done := newProgressObserver(a.logger)
	report, err := orch.Persist(ctx, draft.Content, target, observer)
	done()

	return report, err
}

// persistTarget builds the target for draft from the command line flags
func persistTarget(draft *models.Draft) models.PersistTarget {
	return models.PersistTarget{
		EntityType: draft.Request.EntityType,
		EntityID:   entityID,
		IsWorkbook: workbook,
	}
}

// finishPersist prints the report and turns failed or cancelled runs into a non-zero exit
func finishPersist(a *app, report *orchestrator.Report, err error) error {
	if report != nil {
		fmt.Println(renderReport(report))
		fmt.Println(report.Progress.Status)
	}
	if err != nil {
		if report != nil {
			return fmt.Errorf("persistence interrupted after %d of %d items: %w",
				report.Progress.Current, report.Progress.Total, err)
		}
		return fmt.Errorf("persistence failed: %w", err)
	}

	if failures := report.Failures(); len(failures) > 0 {
		return fmt.Errorf("%d persistence step(s) did not complete; see %s", len(failures), a.session.GetReportPath())
	}
	a.logger.Info("All done", "session_dir", a.session.GetSessionDir())
	return nil
}
