package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalConfig = `
[backend]
base_url = "https://api.example.com/v1"
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Generation.Endpoint != DefaultGenerationEndpoint {
		t.Errorf("Endpoint = %q, want default", cfg.Generation.Endpoint)
	}
	if cfg.Generation.MaxTruncationRetries != 3 {
		t.Errorf("MaxTruncationRetries = %d, want 3", cfg.Generation.MaxTruncationRetries)
	}
	if cfg.Generation.SafetyThreshold != DefaultSafetyThreshold {
		t.Errorf("SafetyThreshold = %q, want %q", cfg.Generation.SafetyThreshold, DefaultSafetyThreshold)
	}
	if len(cfg.Generation.SafetyCategories) != len(DefaultSafetyCategories) {
		t.Errorf("SafetyCategories = %v, want %d entries", cfg.Generation.SafetyCategories, len(DefaultSafetyCategories))
	}
	if cfg.Backend.HTTPTimeoutSeconds != 30 {
		t.Errorf("Backend.HTTPTimeoutSeconds = %d, want 30", cfg.Backend.HTTPTimeoutSeconds)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Output.Dir = %q, want output", cfg.Output.Dir)
	}
	if cfg.PromptTemplates.ClosingInstruction == "" {
		t.Error("ClosingInstruction should fall back to the built-in template")
	}
}

func TestParse_TruncationRetries(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "unset uses default", value: "", want: 3},
		{name: "explicit -1 disables retries", value: "max_truncation_retries = -1", want: 0},
		{name: "explicit value kept", value: "max_truncation_retries = 5", want: 5},
		{name: "above limit rejected", value: "max_truncation_retries = 11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "[generation]\n" + tt.value + "\n" + minimalConfig
			cfg, err := Parse([]byte(data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Generation.MaxTruncationRetries != tt.want {
				t.Errorf("MaxTruncationRetries = %d, want %d", cfg.Generation.MaxTruncationRetries, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "backend.base_url is required",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Generation.Temperature = 2.5 },
			wantErr: "temperature",
		},
		{
			name:    "top_p zero",
			mutate:  func(c *Config) { c.Generation.TopP = -1 },
			wantErr: "top_p",
		},
		{
			name:    "max output tokens too large",
			mutate:  func(c *Config) { c.Generation.MaxOutputTokens = MaxOutputTokensLimit + 1 },
			wantErr: "max_output_tokens",
		},
		{
			name:    "unknown safety threshold",
			mutate:  func(c *Config) { c.Generation.SafetyThreshold = "BLOCK_EVERYTHING" },
			wantErr: "safety_threshold",
		},
		{
			name:    "empty safety categories",
			mutate:  func(c *Config) { c.Generation.SafetyCategories = nil },
			wantErr: "safety_categories",
		},
		{
			name:    "zero backend rate limit",
			mutate:  func(c *Config) { c.Backend.RateLimitPerMinute = 0 },
			wantErr: "backend.rate_limit_per_minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Backend.BaseURL = "https://api.example.com/v1"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[generation]
temperature = 0.4
top_k = 20

[backend]
base_url = "https://api.example.com/v1"
rate_limit_per_minute = 30

[output]
dir = "runs"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "test-key-123")
	t.Setenv("BACKEND_TOKEN", "token-abc")

	cfg, secrets, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Generation.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", cfg.Generation.Temperature)
	}
	if cfg.Generation.TopK != 20 {
		t.Errorf("TopK = %d, want 20", cfg.Generation.TopK)
	}
	if cfg.Backend.RateLimitPerMinute != 30 {
		t.Errorf("Backend.RateLimitPerMinute = %d, want 30", cfg.Backend.RateLimitPerMinute)
	}
	if cfg.Output.Dir != "runs" {
		t.Errorf("Output.Dir = %q, want runs", cfg.Output.Dir)
	}
	if secrets.GenerationAPIKey != "test-key-123" {
		t.Errorf("GenerationAPIKey = %q, want test-key-123", secrets.GenerationAPIKey)
	}
	if secrets.BackendToken != "token-abc" {
		t.Errorf("BackendToken = %q, want token-abc", secrets.BackendToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Run("gemini key wins", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini")
		t.Setenv("API_KEY", "generic")

		secrets, err := LoadSecrets()
		if err != nil {
			t.Fatalf("LoadSecrets() error = %v", err)
		}
		if secrets.GenerationAPIKey != "gemini" {
			t.Errorf("GenerationAPIKey = %q, want gemini", secrets.GenerationAPIKey)
		}
	})

	t.Run("generic fallback", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("API_KEY", "generic")

		secrets, err := LoadSecrets()
		if err != nil {
			t.Fatalf("LoadSecrets() error = %v", err)
		}
		if secrets.GenerationAPIKey != "generic" {
			t.Errorf("GenerationAPIKey = %q, want generic", secrets.GenerationAPIKey)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		secrets := &Secrets{}
		if err := secrets.RequireGenerationKey(); err == nil {
			t.Error("RequireGenerationKey() expected error")
		}
		if err := secrets.RequireBackendToken(); err == nil {
			t.Error("RequireBackendToken() expected error")
		}
	})
}
