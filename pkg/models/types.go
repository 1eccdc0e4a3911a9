package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// EntityType identifies the node of the content tree that generated content belongs to
type EntityType string

const (
	EntityBook     EntityType = "book"
	EntityChapter  EntityType = "chapter"
	EntityTopic    EntityType = "topic"
	EntitySubtopic EntityType = "subtopic"
)

// EntityTypes lists every supported entity type
var EntityTypes = []EntityType{EntityBook, EntityChapter, EntityTopic, EntitySubtopic}

// ParseEntityType converts a user-supplied string into an EntityType
func ParseEntityType(s string) (EntityType, error) {
	normalized := EntityType(strings.ToLower(strings.TrimSpace(s)))
	for _, et := range EntityTypes {
		if normalized == et {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q (expected book, chapter, topic or subtopic)", s)
}

// Title returns the capitalized entity name used in prompts
func (e EntityType) Title() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

// Kind is the question kind of a question set
type Kind string

const (
	KindObjective  Kind = "objective"
	KindSubjective Kind = "subjective"
)

// Kinds is the fixed order in which question kinds are persisted
var Kinds = [...]Kind{KindObjective, KindSubjective}

// Level is a difficulty tier. The zero value is L1.
type Level int

const (
	L1 Level = iota
	L2
	L3

	// LevelCount is the number of difficulty tiers
	LevelCount = 3
)

// Levels is the fixed iteration order of difficulty tiers
var Levels = [LevelCount]Level{L1, L2, L3}

// String returns the canonical key ("L1", "L2", "L3")
func (l Level) String() string {
	switch l {
	case L1:
		return "L1"
	case L2:
		return "L2"
	case L3:
		return "L3"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Difficulty returns the human-readable difficulty name
func (l Level) Difficulty() string {
	switch l {
	case L1:
		return "Beginner"
	case L2:
		return "Intermediate"
	case L3:
		return "Advanced"
	default:
		return "Unknown"
	}
}

// ParseLevel accepts canonical keys and the aliases models tend to emit
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l1", "level1", "level_1", "beginner":
		return L1, true
	case "l2", "level2", "level_2", "intermediate":
		return L2, true
	case "l3", "level3", "level_3", "advanced":
		return L3, true
	}
	return 0, false
}

// ByLevel holds one value per difficulty tier, indexed by Level.
// Every tier slot always exists.
type ByLevel[T any] [LevelCount]T

// At returns the value stored for a level
func (b *ByLevel[T]) At(l Level) T {
	return b[l]
}

// Set stores the value for a level
func (b *ByLevel[T]) Set(l Level, v T) {
	b[l] = v
}

// MarshalJSON encodes the tiers as an object keyed "L1", "L2", "L3"
func (b ByLevel[T]) MarshalJSON() ([]byte, error) {
	m := make(map[string]T, LevelCount)
	for _, l := range Levels {
		m[l.String()] = b[l]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by level names. Unknown keys are ignored
// and missing keys leave the zero value. When a level appears under several
// aliases the canonical key wins, then the alias that sorts last.
func (b *ByLevel[T]) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isCanonicalLevelKey(keys[i]), isCanonicalLevelKey(keys[j])
		if ci != cj {
			return cj
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		l, ok := ParseLevel(key)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal(m[key], &v); err != nil {
			return fmt.Errorf("level %s: %w", l, err)
		}
		b[l] = v
	}
	return nil
}

func isCanonicalLevelKey(key string) bool {
	return key == "L1" || key == "L2" || key == "L3"
}

// DataSourceMode selects whether reference documents feed the prompt
type DataSourceMode string

const (
	WithReferences    DataSourceMode = "with_references"
	WithoutReferences DataSourceMode = "without_references"
)

// ReferenceDoc describes a reference document selected by the user
type ReferenceDoc struct {
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
	Type        string `json:"type" toml:"type"`
}

// LevelConfig is the requested shape of one kind at one level
type LevelConfig struct {
	Sets            int      `json:"sets" toml:"sets"`
	QuestionsPerSet int      `json:"questions_per_set" toml:"questions_per_set"`
	SetNames        []string `json:"set_names,omitempty" toml:"set_names"`
}

// SetName returns the configured name for the i-th set, or a default
func (lc LevelConfig) SetName(i int) string {
	if i < len(lc.SetNames) && strings.TrimSpace(lc.SetNames[i]) != "" {
		return strings.TrimSpace(lc.SetNames[i])
	}
	return fmt.Sprintf("Set %d", i+1)
}

// GenerationRequest describes one content generation invocation.
// It is built once and not modified afterwards.
type GenerationRequest struct {
	EntityType     EntityType           `json:"entity_type"`
	Title          string               `json:"title"`
	Objective      ByLevel[LevelConfig] `json:"objective"`
	Subjective     ByLevel[LevelConfig] `json:"subjective"`
	DataSourceMode DataSourceMode       `json:"data_source_mode"`
	References     []ReferenceDoc       `json:"references,omitempty"`
}

// LevelConfigs returns the per-level configuration for a question kind
func (r GenerationRequest) LevelConfigs(kind Kind) ByLevel[LevelConfig] {
	if kind == KindSubjective {
		return r.Subjective
	}
	return r.Objective
}

// UsesReferences reports whether the reference block belongs in the prompt
func (r GenerationRequest) UsesReferences() bool {
	return r.DataSourceMode == WithReferences && len(r.References) > 0
}

// PersistTarget identifies where generated content is saved
type PersistTarget struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	IsWorkbook bool       `json:"is_workbook"`
}

// SaveProgress is the observable state of a persistence run.
// Current only counts durably saved items and never exceeds Total.
type SaveProgress struct {
	Total   int    `json:"total"`
	Current int    `json:"current"`
	Status  string `json:"status"`
	Done    bool   `json:"done"`
}
