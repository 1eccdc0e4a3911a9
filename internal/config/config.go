package config

import (
	"fmt"
	"os"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	Generation      GenerationConfig `toml:"generation"`
	Backend         BackendConfig    `toml:"backend"`
	PromptTemplates PromptTemplates  `toml:"prompt_templates"`
	Output          OutputConfig     `toml:"output"`
}

// GenerationConfig holds settings for the generative-text endpoint
type GenerationConfig struct {
	Endpoint             string   `toml:"endpoint"` // Full generateContent URL; the API key is appended as ?key=
	Temperature          float64  `toml:"temperature"`
	TopK                 int      `toml:"top_k"`
	TopP                 float64  `toml:"top_p"`
	MaxOutputTokens      int      `toml:"max_output_tokens"`
	SafetyThreshold      string   `toml:"safety_threshold"`
	SafetyCategories     []string `toml:"safety_categories"`
	MaxTruncationRetries int      `toml:"max_truncation_retries"` // 0 = default (3), -1 = never retry
	HTTPTimeoutSeconds   int      `toml:"http_timeout_seconds"`
	RateLimitPerMinute   int      `toml:"rate_limit_per_minute"`
}

// BackendConfig holds settings for the content REST backend
type BackendConfig struct {
	BaseURL            string `toml:"base_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
}

// OutputConfig controls where session artifacts land
type OutputConfig struct {
	Dir         string `toml:"dir"`          // Root for session directories (default: output)
	MetricsAddr string `toml:"metrics_addr"` // Optional listen address for /metrics (e.g. ":2112")
}

// PromptTemplates holds the customizable prompt blocks.
// Empty fields fall back to the built-in templates.
type PromptTemplates struct {
	SystemFraming          string `toml:"system_framing"`
	ReferenceContext       string `toml:"reference_context"`
	SummaryInstructions    string `toml:"summary_instructions"`
	ObjectiveInstructions  string `toml:"objective_instructions"`
	SubjectiveInstructions string `toml:"subjective_instructions"`
	ClosingInstruction     string `toml:"closing_instruction"`
}

// Secrets holds sensitive credentials loaded from environment variables
type Secrets struct {
	GenerationAPIKey string
	BackendToken     string
}

const (
	// MaxTruncationRetries is the upper bound for generation.max_truncation_retries
	MaxTruncationRetries = 10
	// MaxOutputTokensLimit is the upper bound for generation.max_output_tokens
	MaxOutputTokensLimit = 65536
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	g := c.Generation
	if g.Endpoint == "" {
		return fmt.Errorf("generation.endpoint is required")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be between 0 and 2 (got %.2f)", g.Temperature)
	}
	if g.TopK < 1 {
		return fmt.Errorf("generation.top_k must be at least 1")
	}
	if g.TopP <= 0 || g.TopP > 1 {
		return fmt.Errorf("generation.top_p must be in (0, 1] (got %.2f)", g.TopP)
	}
	if g.MaxOutputTokens < 1 || g.MaxOutputTokens > MaxOutputTokensLimit {
		return fmt.Errorf("generation.max_output_tokens must be between 1 and %d (got %d)", MaxOutputTokensLimit, g.MaxOutputTokens)
	}
	if g.MaxTruncationRetries < 0 || g.MaxTruncationRetries > MaxTruncationRetries {
		return fmt.Errorf("generation.max_truncation_retries must be between 0 and %d (got %d)", MaxTruncationRetries, g.MaxTruncationRetries)
	}
	if !validSafetyThreshold(g.SafetyThreshold) {
		return fmt.Errorf("generation.safety_threshold %q is not a known threshold", g.SafetyThreshold)
	}
	if len(g.SafetyCategories) == 0 {
		return fmt.Errorf("generation.safety_categories must not be empty")
	}
	if g.RateLimitPerMinute < 1 {
		return fmt.Errorf("generation.rate_limit_per_minute must be at least 1")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.RateLimitPerMinute < 1 {
		return fmt.Errorf("backend.rate_limit_per_minute must be at least 1")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	return nil
}

func validSafetyThreshold(threshold string) bool {
	switch threshold {
	case "BLOCK_NONE", "BLOCK_ONLY_HIGH", "BLOCK_MEDIUM_AND_ABOVE", "BLOCK_LOW_AND_ABOVE":
		return true
	}
	return false
}

// LoadSecrets loads sensitive credentials from environment variables
func LoadSecrets() (*Secrets, error) {
	secrets := &Secrets{}

	// Provider-specific key wins over the generic one
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		secrets.GenerationAPIKey = key
	} else if key := os.Getenv("API_KEY"); key != "" {
		secrets.GenerationAPIKey = key
	}

	secrets.BackendToken = strings.TrimSpace(os.Getenv("BACKEND_TOKEN"))

	return secrets, nil
}

// RequireGenerationKey returns an error when no generation API key was loaded
func (s *Secrets) RequireGenerationKey() error {
	if s.GenerationAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY (or API_KEY) environment variable must be set")
	}
	return nil
}

// RequireBackendToken returns an error when no backend bearer token was loaded
func (s *Secrets) RequireBackendToken() error {
	if s.BackendToken == "" {
		return fmt.Errorf("BACKEND_TOKEN environment variable must be set")
	}
	return nil
}
