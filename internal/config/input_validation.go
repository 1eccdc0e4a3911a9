package config

import (
	"fmt"
	"net/url"
	"unicode"

	"github.com/lamim/contentforge/internal/util"
)

const (
	// MaxTitleLength is the maximum allowed length for an entity title
	MaxTitleLength = 500

	// MaxReferenceFieldLength bounds each reference name/description/type
	MaxReferenceFieldLength = 2000

	// MaxTemplateSize is the maximum allowed size for template content
	MaxTemplateSize = 50 * 1024 // 50KB
)

// ValidateInputs performs additional security validation on user-controllable fields
func (c *Config) ValidateInputs() error {
	if err := validateURL(c.Generation.Endpoint, "generation.endpoint"); err != nil {
		return err
	}
	if err := validateURL(c.Backend.BaseURL, "backend.base_url"); err != nil {
		return err
	}

	if err := c.validateTemplates(); err != nil {
		return err
	}

	return nil
}

// validateTitle checks the entity title for security issues
func validateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return fmt.Errorf("exceeds maximum length of %d characters (got %d)",
			MaxTitleLength, len(title))
	}

	if containsControlChars(title) {
		return fmt.Errorf("contains invalid control characters")
	}

	return nil
}

// validateReferenceField checks one free-text field of a reference document
func validateReferenceField(value, field string, index int) error {
	if len(value) > MaxReferenceFieldLength {
		return fmt.Errorf("references[%d].%s exceeds maximum length of %d (got %d)",
			index, field, MaxReferenceFieldLength, len(value))
	}
	if containsControlChars(value) {
		return fmt.Errorf("references[%d].%s contains invalid control characters", index, field)
	}
	return nil
}

// validateURL checks that a URL is properly formatted and safe
func validateURL(raw, configKey string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", configKey, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme (got %s)", configKey, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%s must have a host", configKey)
	}

	return nil
}

// validateTemplates checks template sizes and rejects forbidden directives early
func (c *Config) validateTemplates() error {
	templates := []struct {
		name  string
		value string
	}{
		{"system_framing", c.PromptTemplates.SystemFraming},
		{"reference_context", c.PromptTemplates.ReferenceContext},
		{"summary_instructions", c.PromptTemplates.SummaryInstructions},
		{"objective_instructions", c.PromptTemplates.ObjectiveInstructions},
		{"subjective_instructions", c.PromptTemplates.SubjectiveInstructions},
		{"closing_instruction", c.PromptTemplates.ClosingInstruction},
	}

	for _, tmpl := range templates {
		if len(tmpl.value) > MaxTemplateSize {
			return fmt.Errorf("template '%s' exceeds maximum size of %d bytes (got %d)",
				tmpl.name, MaxTemplateSize, len(tmpl.value))
		}
		if _, err := util.ParseTemplate(tmpl.name, tmpl.value); err != nil {
			return fmt.Errorf("prompt_templates.%s: %w", tmpl.name, err)
		}
	}

	return nil
}

// containsControlChars checks if a string contains control characters
// (excluding newlines, tabs, and carriage returns which are acceptable)
func containsControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
