package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lamim/contentforge/internal/util"
	"github.com/lamim/contentforge/pkg/models"
)

// text accepts a JSON string, number or boolean as text. null decodes to "".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = text(val)
	case float64, bool:
		*t = text(fmt.Sprint(val))
	default:
		return fmt.Errorf("expected text, got %s", string(data))
	}
	return nil
}

// textList accepts either an array of text values or a single comma-separated string
type textList []string

func (l *textList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var items []text
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = string(item)
		}
		*l = out
		return nil
	}
	var single text
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected list of text, got %s", string(data))
	}
	*l = strings.Split(string(single), ",")
	return nil
}

type rawObjectiveQuestion struct {
	Question      text            `json:"question"`
	Options       []text          `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
}

type rawSubjectiveQuestion struct {
	Question  text     `json:"question"`
	Answer    text     `json:"answer"`
	Keywords  textList `json:"keywords"`
	KeyPoints textList `json:"keyPoints"`
}

type rawSet[Q any] struct {
	SetName   text `json:"setName"`
	Name      text `json:"name"`
	Questions []Q  `json:"questions"`
}

func (s rawSet[Q]) name(index int) string {
	if name := strings.TrimSpace(string(s.SetName)); name != "" {
		return name
	}
	if name := strings.TrimSpace(string(s.Name)); name != "" {
		return name
	}
	return fmt.Sprintf("Set %d", index+1)
}

// decodeContent builds GeneratedContent from the validated top-level object
func decodeContent(top map[string]json.RawMessage) (models.GeneratedContent, error) {
	var summary text
	if err := json.Unmarshal(top["summary"], &summary); err != nil {
		return models.GeneratedContent{}, fmt.Errorf("summary: %w", err)
	}

	var objective models.ByLevel[[]rawSet[rawObjectiveQuestion]]
	if err := json.Unmarshal(top["objective"], &objective); err != nil {
		return models.GeneratedContent{}, fmt.Errorf("objective: %w", err)
	}

	var subjective models.ByLevel[[]rawSet[rawSubjectiveQuestion]]
	if err := json.Unmarshal(top["subjective"], &subjective); err != nil {
		return models.GeneratedContent{}, fmt.Errorf("subjective: %w", err)
	}

	content := models.NewPlaceholderContent(strings.TrimSpace(string(summary)))
	for _, l := range models.Levels {
		for i, set := range objective[l] {
			content.Objective[l] = append(content.Objective[l], models.ObjectiveSet{
				SetName:   set.name(i),
				Questions: normalizeObjective(set.Questions),
			})
		}
		for i, set := range subjective[l] {
			content.Subjective[l] = append(content.Subjective[l], models.SubjectiveSet{
				SetName:   set.name(i),
				Questions: normalizeSubjective(set.Questions),
			})
		}
	}
	return content, nil
}

func normalizeObjective(raw []rawObjectiveQuestion) []models.ObjectiveQuestion {
	out := make([]models.ObjectiveQuestion, 0, len(raw))
	for _, q := range raw {
		options := make([]string, len(q.Options))
		for i, opt := range q.Options {
			options[i] = strings.TrimSpace(string(opt))
		}
		out = append(out, models.ObjectiveQuestion{
			Question:      strings.TrimSpace(string(q.Question)),
			Options:       options,
			CorrectAnswer: answerIndex(q.CorrectAnswer, options),
		})
	}
	return out
}

func normalizeSubjective(raw []rawSubjectiveQuestion) []models.SubjectiveQuestion {
	out := make([]models.SubjectiveQuestion, 0, len(raw))
	for _, q := range raw {
		keywords := util.JoinList(q.Keywords)
		if q.KeyPoints != nil {
			keywords = util.JoinList(q.KeyPoints)
		}
		out = append(out, models.SubjectiveQuestion{
			Question: strings.TrimSpace(string(q.Question)),
			Answer:   strings.TrimSpace(string(q.Answer)),
			Keywords: keywords,
		})
	}
	return out
}

// answerIndex resolves correctAnswer to an option index. Numbers pass
// through. Strings are tried as a number, then as option text, then as an
// option letter. Anything else yields -1.
func answerIndex(raw json.RawMessage, options []string) int {
	if len(raw) == 0 || string(raw) == "null" {
		return -1
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return -1
	}
	s = strings.TrimSpace(s)

	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	for i, opt := range options {
		if strings.EqualFold(opt, s) {
			return i
		}
	}
	if len(s) == 1 {
		c := s[0] | 0x20 // lower-case ASCII letters
		if c >= 'a' && c <= 'z' {
			return int(c - 'a')
		}
	}
	return -1
}
