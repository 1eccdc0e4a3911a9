package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/lamim/contentforge/pkg/models"
)

const (
	// MaxSetsPerLevel bounds the number of sets requested for one kind at one level
	MaxSetsPerLevel = 20
	// MaxQuestionsPerSet bounds the number of questions requested per set
	MaxQuestionsPerSet = 50
)

// requestFile is the TOML shape of a generation request
type requestFile struct {
	EntityType     string                        `toml:"entity_type"`
	Title          string                        `toml:"title"`
	DataSourceMode string                        `toml:"data_source_mode"`
	Objective      map[string]models.LevelConfig `toml:"objective"`
	Subjective     map[string]models.LevelConfig `toml:"subjective"`
	References     []models.ReferenceDoc         `toml:"references"`
}

// LoadRequest reads a generation request from a TOML file
func LoadRequest(path string) (models.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.GenerationRequest{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return ParseRequest(data)
}

// ParseRequest decodes and validates a TOML generation request
func ParseRequest(data []byte) (models.GenerationRequest, error) {
	var rf requestFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return models.GenerationRequest{}, fmt.Errorf("failed to parse request file: %w", err)
	}

	entityType, err := models.ParseEntityType(rf.EntityType)
	if err != nil {
		return models.GenerationRequest{}, err
	}

	req := models.GenerationRequest{
		EntityType: entityType,
		Title:      strings.TrimSpace(rf.Title),
		References: rf.References,
	}

	switch models.DataSourceMode(strings.ToLower(strings.TrimSpace(rf.DataSourceMode))) {
	case models.WithReferences:
		req.DataSourceMode = models.WithReferences
	case models.WithoutReferences:
		req.DataSourceMode = models.WithoutReferences
	case "":
		// Default follows whether any reference was supplied
		req.DataSourceMode = models.WithoutReferences
		if len(rf.References) > 0 {
			req.DataSourceMode = models.WithReferences
		}
	default:
		return models.GenerationRequest{}, fmt.Errorf("data_source_mode must be with_references or without_references (got %q)", rf.DataSourceMode)
	}

	if req.Objective, err = levelConfigs("objective", rf.Objective); err != nil {
		return models.GenerationRequest{}, err
	}
	if req.Subjective, err = levelConfigs("subjective", rf.Subjective); err != nil {
		return models.GenerationRequest{}, err
	}

	if err := ValidateRequest(req); err != nil {
		return models.GenerationRequest{}, err
	}
	return req, nil
}

func levelConfigs(section string, raw map[string]models.LevelConfig) (models.ByLevel[models.LevelConfig], error) {
	var out models.ByLevel[models.LevelConfig]
	for key, lc := range raw {
		level, ok := models.ParseLevel(key)
		if !ok {
			return out, fmt.Errorf("%s.%s: unknown level (expected L1, L2 or L3)", section, key)
		}
		out[level] = lc
	}
	return out, nil
}

// ValidateRequest checks a generation request built from any source
func ValidateRequest(req models.GenerationRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := validateTitle(req.Title); err != nil {
		return fmt.Errorf("invalid title: %w", err)
	}

	for _, kind := range models.Kinds {
		configs := req.LevelConfigs(kind)
		for _, level := range models.Levels {
			lc := configs[level]
			if lc.Sets < 0 || lc.Sets > MaxSetsPerLevel {
				return fmt.Errorf("%s.%s.sets must be between 0 and %d (got %d)", kind, level, MaxSetsPerLevel, lc.Sets)
			}
			if lc.QuestionsPerSet < 0 || lc.QuestionsPerSet > MaxQuestionsPerSet {
				return fmt.Errorf("%s.%s.questions_per_set must be between 0 and %d (got %d)", kind, level, MaxQuestionsPerSet, lc.QuestionsPerSet)
			}
			if lc.Sets > 0 && lc.QuestionsPerSet == 0 {
				return fmt.Errorf("%s.%s.questions_per_set must be at least 1 when sets > 0", kind, level)
			}
			if len(lc.SetNames) > lc.Sets {
				return fmt.Errorf("%s.%s has %d set_names for %d sets", kind, level, len(lc.SetNames), lc.Sets)
			}
		}
	}

	for i, ref := range req.References {
		if strings.TrimSpace(ref.Name) == "" {
			return fmt.Errorf("references[%d].name is required", i)
		}
		if err := validateReferenceField(ref.Name, "name", i); err != nil {
			return err
		}
		if err := validateReferenceField(ref.Description, "description", i); err != nil {
			return err
		}
		if err := validateReferenceField(ref.Type, "type", i); err != nil {
			return err
		}
	}

	return nil
}
