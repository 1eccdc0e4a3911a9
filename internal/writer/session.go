package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SessionManager manages session directories and files
type SessionManager struct {
	sessionDir string
	logger     *slog.Logger
}

// NewSessionManager creates a new timestamped session directory under outputDir
func NewSessionManager(outputDir string, logger *slog.Logger) (*SessionManager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05")
	sessionDir := filepath.Join(outputDir, "session_"+timestamp)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	logger.Info("Created new session directory", "path", sessionDir)

	return &SessionManager{
		sessionDir: sessionDir,
		logger:     logger,
	}, nil
}

// OpenSession reuses an existing session directory by name, e.g. to persist its draft
func OpenSession(outputDir, sessionName string, logger *slog.Logger) (*SessionManager, error) {
	if err := ValidateSessionPath(outputDir, sessionName); err != nil {
		return nil, err
	}

	sessionDir := filepath.Join(outputDir, sessionName)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("session directory not found: %s", sessionDir)
	}
	logger.Info("Using existing session", "path", sessionDir)

	return &SessionManager{
		sessionDir: sessionDir,
		logger:     logger,
	}, nil
}

// SessionForDraft uses the directory holding draftPath as the session
func SessionForDraft(draftPath string, logger *slog.Logger) (*SessionManager, error) {
	dir := filepath.Dir(draftPath)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open draft directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("draft directory is not a directory: %s", dir)
	}
	return &SessionManager{
		sessionDir: dir,
		logger:     logger,
	}, nil
}

// GetSessionDir returns the session directory path
func (sm *SessionManager) GetSessionDir() string {
	return sm.sessionDir
}

// GetDraftPath returns the full path to the draft file
func (sm *SessionManager) GetDraftPath() string {
	return filepath.Join(sm.sessionDir, "draft.json")
}

// GetPreviewPath returns the full path to the formatted preview
func (sm *SessionManager) GetPreviewPath() string {
	return filepath.Join(sm.sessionDir, "preview.txt")
}

// GetRawOutputPath returns the full path to the raw model output
func (sm *SessionManager) GetRawOutputPath() string {
	return filepath.Join(sm.sessionDir, "raw_output.txt")
}

// GetReportPath returns the full path to the persistence report
func (sm *SessionManager) GetReportPath() string {
	return filepath.Join(sm.sessionDir, "persist_report.jsonl")
}

// GetLogPath returns the full path to the session log file
func (sm *SessionManager) GetLogPath() string {
	return filepath.Join(sm.sessionDir, "session.log")
}

// GetConfigBackupPath returns the full path to the config backup
func (sm *SessionManager) GetConfigBackupPath() string {
	return filepath.Join(sm.sessionDir, "config.toml.bak")
}

// GetRequestBackupPath returns the full path to the request backup
func (sm *SessionManager) GetRequestBackupPath() string {
	return filepath.Join(sm.sessionDir, "request.toml.bak")
}

// BackupConfig copies the config file to the session directory
func (sm *SessionManager) BackupConfig(configPath string) error {
	return sm.backup(configPath, sm.GetConfigBackupPath())
}

// BackupRequest copies the request file to the session directory
func (sm *SessionManager) BackupRequest(requestPath string) error {
	return sm.backup(requestPath, sm.GetRequestBackupPath())
}

func (sm *SessionManager) backup(src, dst string) error {
	source, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	if err := os.WriteFile(dst, source, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	sm.logger.Info("Backed up file", "source", src, "path", dst)
	return nil
}
