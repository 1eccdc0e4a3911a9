package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lamim/contentforge/internal/orchestrator"
)

// ReportWriter appends persistence outcomes to the session report as JSON lines
type ReportWriter struct {
	file    *os.File
	mu      sync.Mutex
	written int
	logger  *slog.Logger
}

// NewReportWriter creates the report file, appending when it already exists
// so that repeated persist attempts of one draft share a history.
func NewReportWriter(sessionMgr *SessionManager, logger *slog.Logger) (*ReportWriter, error) {
	reportPath := sessionMgr.GetReportPath()

	file, err := os.OpenFile(reportPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	logger.Info("Opened persistence report", "path", reportPath)

	return &ReportWriter{
		file:   file,
		logger: logger,
	}, nil
}

// WriteResult writes a single item outcome to the report file
func (rw *ReportWriter) WriteResult(result orchestrator.ItemResult) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if _, err := rw.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	rw.written++

	return nil
}

// Written returns the number of results written so far
func (rw *ReportWriter) Written() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}

// Close closes the report file
func (rw *ReportWriter) Close() error {
	if err := rw.file.Sync(); err != nil {
		rw.logger.Warn("Failed to sync report file", "error", err)
	}

	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	rw.logger.Info("Closed persistence report", "results", rw.written)
	return nil
}
