// Package prompt renders a GenerationRequest into the single text prompt
// sent to the generation endpoint.
package prompt

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/internal/util"
	"github.com/lamim/contentforge/pkg/models"
)

// block is one section of the prompt. fallback is the built-in template used
// when the configured one fails to execute.
type block struct {
	name     string
	tmpl     *template.Template
	fallback *template.Template
}

// Builder composes prompts from configurable templates. It is safe for concurrent use.
type Builder struct {
	framing    block
	references block
	summary    block
	objective  block
	subjective block
	closing    block
	logger     *slog.Logger
}

// levelData is the per-level view handed to the kind sub-templates
type levelData struct {
	Key             string
	Difficulty      string
	Sets            int
	QuestionsPerSet int
	SetNames        []string
}

// SetNameList renders the configured set names as a quoted list
func (l levelData) SetNameList() string {
	quoted := make([]string, len(l.SetNames))
	for i, name := range l.SetNames {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return strings.Join(quoted, ", ")
}

type promptData struct {
	EntityType string
	Title      string
	References []models.ReferenceDoc
	Levels     []levelData
}

// NewBuilder parses every configured template. Empty templates fall back to the built-ins.
func NewBuilder(templates config.PromptTemplates, logger *slog.Logger) (*Builder, error) {
	b := &Builder{logger: logger.With("component", "prompt")}

	specs := []struct {
		dst      *block
		name     string
		custom   string
		fallback string
	}{
		{&b.framing, "system_framing", templates.SystemFraming, config.GetDefaultSystemFramingTemplate()},
		{&b.references, "reference_context", templates.ReferenceContext, config.GetDefaultReferenceContextTemplate()},
		{&b.summary, "summary_instructions", templates.SummaryInstructions, config.GetDefaultSummaryTemplate()},
		{&b.objective, "objective_instructions", templates.ObjectiveInstructions, config.GetDefaultObjectiveTemplate()},
		{&b.subjective, "subjective_instructions", templates.SubjectiveInstructions, config.GetDefaultSubjectiveTemplate()},
		{&b.closing, "closing_instruction", templates.ClosingInstruction, config.GetDefaultClosingInstruction()},
	}

	for _, s := range specs {
		fallback, err := util.ParseTemplate(s.name, s.fallback)
		if err != nil {
			return nil, fmt.Errorf("built-in template %s: %w", s.name, err)
		}
		tmpl := fallback
		if s.custom != "" {
			if tmpl, err = util.ParseTemplate(s.name, s.custom); err != nil {
				return nil, err
			}
		}
		*s.dst = block{name: s.name, tmpl: tmpl, fallback: fallback}
	}

	return b, nil
}

// Build renders the prompt for req. It always returns a prompt.
func (b *Builder) Build(req models.GenerationRequest) string {
	base := promptData{
		EntityType: req.EntityType.Title(),
		Title:      req.Title,
	}
	if req.UsesReferences() {
		base.References = req.References
	}

	sections := []string{b.render(b.framing, base)}
	if len(base.References) > 0 {
		sections = append(sections, b.render(b.references, base))
	}

	sections = append(sections, b.render(b.summary, base))

	objective := base
	objective.Levels = levels(req.Objective)
	sections = append(sections, b.render(b.objective, objective))

	subjective := base
	subjective.Levels = levels(req.Subjective)
	sections = append(sections, b.render(b.subjective, subjective))

	sections = append(sections, b.render(b.closing, base))

	return strings.Join(sections, "\n\n")
}

func (b *Builder) render(blk block, data promptData) string {
	var buf bytes.Buffer
	err := blk.tmpl.Execute(&buf, data)
	if err == nil {
		return strings.TrimSpace(buf.String())
	}
	if blk.tmpl != blk.fallback {
		b.logger.Warn("Custom template failed, using built-in", "template", blk.name, "error", err)
	}

	buf.Reset()
	if err := blk.fallback.Execute(&buf, data); err != nil {
		// Built-ins only reference promptData fields
		b.logger.Error("Built-in template failed", "template", blk.name, "error", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func levels(configs models.ByLevel[models.LevelConfig]) []levelData {
	out := make([]levelData, 0, models.LevelCount)
	for _, l := range models.Levels {
		lc := configs[l]
		names := make([]string, 0, lc.Sets)
		if len(lc.SetNames) > 0 {
			for i := 0; i < lc.Sets; i++ {
				names = append(names, lc.SetName(i))
			}
		}
		out = append(out, levelData{
			Key:             l.String(),
			Difficulty:      l.Difficulty(),
			Sets:            lc.Sets,
			QuestionsPerSet: lc.QuestionsPerSet,
			SetNames:        names,
		})
	}
	return out
}
