package writer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lamim/contentforge/pkg/models"
)

// SaveDraft writes the draft as indented JSON, replacing the file atomically
func SaveDraft(path string, draft *models.Draft) error {
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace draft: %w", err)
	}
	return nil
}

// LoadDraft reads a draft written by SaveDraft
func LoadDraft(path string) (*models.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	if draft.ID == "" {
		return nil, fmt.Errorf("draft %s has no id", path)
	}
	return &draft, nil
}

// WriteText writes a plain text artifact such as the preview or raw output
func WriteText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
