package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultGenerationEndpoint is the Gemini generateContent endpoint used when none is configured
	DefaultGenerationEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	// DefaultSafetyThreshold blocks medium-and-above content in every category
	DefaultSafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

// DefaultSafetyCategories are the harm categories filtered on every request
var DefaultSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Load reads and parses the configuration file and environment variables
func Load(configPath string) (*Config, *Secrets, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return cfg, secrets, nil
}

// Parse decodes TOML configuration, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ValidateInputs(); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	g := &cfg.Generation
	if g.Endpoint == "" {
		g.Endpoint = DefaultGenerationEndpoint
	}
	if g.Temperature == 0 {
		g.Temperature = 0.7
	}
	if g.TopK == 0 {
		g.TopK = 40
	}
	if g.TopP == 0 {
		g.TopP = 0.95
	}
	if g.MaxOutputTokens == 0 {
		g.MaxOutputTokens = 8192
	}
	if g.SafetyThreshold == "" {
		g.SafetyThreshold = DefaultSafetyThreshold
	}
	if len(g.SafetyCategories) == 0 {
		g.SafetyCategories = append([]string(nil), DefaultSafetyCategories...)
	}
	// NOTE: TOML can't distinguish 0 from unset, so:
	// - Unset (0) → 3 retries
	// - Explicitly -1 → no retries
	switch {
	case g.MaxTruncationRetries == 0:
		g.MaxTruncationRetries = 3
	case g.MaxTruncationRetries < 0:
		g.MaxTruncationRetries = 0
	}
	if g.HTTPTimeoutSeconds == 0 {
		g.HTTPTimeoutSeconds = 120
	}
	if g.RateLimitPerMinute == 0 {
		g.RateLimitPerMinute = 15
	}

	if cfg.Backend.HTTPTimeoutSeconds == 0 {
		cfg.Backend.HTTPTimeoutSeconds = 30
	}
	if cfg.Backend.RateLimitPerMinute == 0 {
		cfg.Backend.RateLimitPerMinute = 120
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}

	t := &cfg.PromptTemplates
	if t.SystemFraming == "" {
		t.SystemFraming = GetDefaultSystemFramingTemplate()
	}
	if t.ReferenceContext == "" {
		t.ReferenceContext = GetDefaultReferenceContextTemplate()
	}
	if t.SummaryInstructions == "" {
		t.SummaryInstructions = GetDefaultSummaryTemplate()
	}
	if t.ObjectiveInstructions == "" {
		t.ObjectiveInstructions = GetDefaultObjectiveTemplate()
	}
	if t.SubjectiveInstructions == "" {
		t.SubjectiveInstructions = GetDefaultSubjectiveTemplate()
	}
	if t.ClosingInstruction == "" {
		t.ClosingInstruction = GetDefaultClosingInstruction()
	}
}
