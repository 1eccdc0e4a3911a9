package models

import (
	"fmt"
	"strings"
)

// ObjectiveQuestion is a multiple-choice question; CorrectAnswer indexes Options
type ObjectiveQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// SubjectiveQuestion is a free-text question with a model answer
type SubjectiveQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Keywords string `json:"keywords"` // comma separated
}

// ObjectiveSet is a named set of objective questions at one level
type ObjectiveSet struct {
	SetName   string              `json:"setName"`
	Questions []ObjectiveQuestion `json:"questions"`
}

// SubjectiveSet is a named set of subjective questions at one level
type SubjectiveSet struct {
	SetName   string               `json:"setName"`
	Questions []SubjectiveQuestion `json:"questions"`
}

// GeneratedContent is the parsed content graph returned by the model
type GeneratedContent struct {
	Summary    string                   `json:"summary"`
	Objective  ByLevel[[]ObjectiveSet]  `json:"objective"`
	Subjective ByLevel[[]SubjectiveSet] `json:"subjective"`
}

// NewPlaceholderContent returns content with the given summary and every level slot empty
func NewPlaceholderContent(summary string) GeneratedContent {
	c := GeneratedContent{Summary: summary}
	for _, l := range Levels {
		c.Objective[l] = []ObjectiveSet{}
		c.Subjective[l] = []SubjectiveSet{}
	}
	return c
}

// SetCount returns the number of question sets of a kind at a level
func (c *GeneratedContent) SetCount(kind Kind, l Level) int {
	if kind == KindSubjective {
		return len(c.Subjective[l])
	}
	return len(c.Objective[l])
}

// QuestionCount returns the number of questions of a kind at a level
func (c *GeneratedContent) QuestionCount(kind Kind, l Level) int {
	n := 0
	if kind == KindSubjective {
		for _, s := range c.Subjective[l] {
			n += len(s.Questions)
		}
		return n
	}
	for _, s := range c.Objective[l] {
		n += len(s.Questions)
	}
	return n
}

// HasSummary reports whether the summary should be persisted
func (c *GeneratedContent) HasSummary() bool {
	return strings.TrimSpace(c.Summary) != ""
}

// Problems lists structural oddities worth showing a reviewer.
// It never rejects content.
func (c *GeneratedContent) Problems() []string {
	var problems []string
	for _, l := range Levels {
		for si, set := range c.Objective[l] {
			for qi, q := range set.Questions {
				where := fmt.Sprintf("objective %s set %d (%q) question %d", l, si+1, set.SetName, qi+1)
				if strings.TrimSpace(q.Question) == "" {
					problems = append(problems, where+": empty question text")
				}
				if len(q.Options) != 4 {
					problems = append(problems, fmt.Sprintf("%s: expected 4 options, got %d", where, len(q.Options)))
				}
				if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
					problems = append(problems, fmt.Sprintf("%s: correctAnswer %d out of range", where, q.CorrectAnswer))
				}
			}
		}
		for si, set := range c.Subjective[l] {
			for qi, q := range set.Questions {
				where := fmt.Sprintf("subjective %s set %d (%q) question %d", l, si+1, set.SetName, qi+1)
				if strings.TrimSpace(q.Question) == "" {
					problems = append(problems, where+": empty question text")
				}
				if strings.TrimSpace(q.Answer) == "" {
					problems = append(problems, where+": empty answer")
				}
			}
		}
	}
	return problems
}
