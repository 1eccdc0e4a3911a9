package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lamim/contentforge/pkg/models"
)

const singleSetOutput = `{"summary":"","objective":{"L1":[{"setName":"Set 1","questions":[{"question":"Q1","options":["a","b","c","d"],"correctAnswer":0},{"question":"Q2","options":["a","b","c","d"],"correctAnswer":1}]}],"L2":[],"L3":[]},"subjective":{"L1":[],"L2":[],"L3":[]}}`

func assertPlaceholder(t *testing.T, c models.GeneratedContent) {
	t.Helper()
	if !c.HasSummary() {
		t.Error("placeholder summary should be non-empty")
	}
	for _, l := range models.Levels {
		if c.Objective[l] == nil || len(c.Objective[l]) != 0 {
			t.Errorf("objective %s = %v, want empty non-nil slice", l, c.Objective[l])
		}
		if c.Subjective[l] == nil || len(c.Subjective[l]) != 0 {
			t.Errorf("subjective %s = %v, want empty non-nil slice", l, c.Subjective[l])
		}
	}
}

func TestParse_SingleSet(t *testing.T) {
	res := Parse(singleSetOutput)

	if res.IsTruncated {
		t.Fatal("IsTruncated = true, want false")
	}
	if res.Err != nil {
		t.Fatalf("Err = %v, want nil", res.Err)
	}
	if res.Status() != models.DraftOK {
		t.Errorf("Status() = %q, want ok", res.Status())
	}

	c := res.Content
	if c.HasSummary() {
		t.Errorf("Summary = %q, want empty", c.Summary)
	}
	if got := c.SetCount(models.KindObjective, models.L1); got != 1 {
		t.Fatalf("objective L1 sets = %d, want 1", got)
	}
	set := c.Objective[models.L1][0]
	if set.SetName != "Set 1" || len(set.Questions) != 2 {
		t.Fatalf("unexpected set %+v", set)
	}
	if set.Questions[1].CorrectAnswer != 1 {
		t.Errorf("Q2 correctAnswer = %d, want 1", set.Questions[1].CorrectAnswer)
	}
	for _, l := range []models.Level{models.L2, models.L3} {
		if c.Objective[l] == nil || len(c.Objective[l]) != 0 {
			t.Errorf("objective %s should be empty non-nil", l)
		}
	}
	for _, l := range models.Levels {
		if c.Subjective[l] == nil {
			t.Errorf("subjective %s should be non-nil", l)
		}
	}
}

func TestParse_Truncated(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "cut inside nested object",
			raw:  `{"summary":"s","objective":{"L1":[{"setName":"A","questions":[{"question":"Q"}]}]}, "subjective":{"L1":[{"a":1}`,
		},
		{
			name: "extra open bracket",
			raw:  `{"summary":"s","objective":{"L1":[[]},"subjective":{}}`,
		},
		{
			name: "brace inside string counts",
			raw:  `{"summary":"use { carefully","objective":{},"subjective":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw)
			if !res.IsTruncated {
				t.Fatal("IsTruncated = false, want true")
			}
			if !errors.Is(res.Err, ErrTruncatedOutput) {
				t.Errorf("Err = %v, want ErrTruncatedOutput", res.Err)
			}
			if res.Content.Summary != TruncatedSummary {
				t.Errorf("Summary = %q, want %q", res.Content.Summary, TruncatedSummary)
			}
			if res.Status() != models.DraftTruncated {
				t.Errorf("Status() = %q, want truncated", res.Status())
			}
			assertPlaceholder(t, res.Content)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "no braces", raw: "Sorry, I cannot help with that.", wantErr: "no JSON object"},
		{name: "closing before opening", raw: "} oops {", wantErr: "no JSON object"},
		{
			name:    "missing subjective",
			raw:     `{"summary":"s","objective":{"L1":[],"L2":[],"L3":[]}}`,
			wantErr: `missing "subjective"`,
		},
		{
			name:    "missing summary",
			raw:     `{"objective":{},"subjective":{}}`,
			wantErr: `missing "summary"`,
		},
		{
			name:    "balanced but invalid json",
			raw:     `{"summary": "s", "objective": {}, "subjective": {},}`,
			wantErr: "malformed",
		},
		{
			name:    "objective is not an object",
			raw:     `{"summary":"s","objective":[],"subjective":{}}`,
			wantErr: "objective",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw)
			if res.IsTruncated {
				t.Error("IsTruncated = true, want false")
			}
			if !errors.Is(res.Err, ErrMalformedContent) {
				t.Fatalf("Err = %v, want ErrMalformedContent", res.Err)
			}
			if !strings.Contains(res.Err.Error(), tt.wantErr) {
				t.Errorf("Err = %v, want substring %q", res.Err, tt.wantErr)
			}
			if res.Content.Summary != MalformedSummary {
				t.Errorf("Summary = %q, want malformed summary", res.Content.Summary)
			}
			if res.Status() != models.DraftMalformed {
				t.Errorf("Status() = %q, want malformed", res.Status())
			}
			assertPlaceholder(t, res.Content)
		})
	}
}

func TestParse_SurroundingProse(t *testing.T) {
	raw := "Here is your content:\n```json\n" + singleSetOutput + "\n```\nHope this helps!"
	res := Parse(raw)
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Content.QuestionCount(models.KindObjective, models.L1) != 2 {
		t.Error("expected 2 objective L1 questions")
	}
}

func TestParse_Normalization(t *testing.T) {
	raw := `{
		"summary": "  Cells divide.  ",
		"objective": {
			"beginner": [{"name": "Basics", "questions": [
				{"question": "Q1", "options": ["w","x","y","z"], "correctAnswer": "2"},
				{"question": "Q2", "options": ["w","x","y","z"], "correctAnswer": "B"},
				{"question": "Q3", "options": ["w","x","y","z"], "correctAnswer": "z"},
				{"question": "Q4", "options": ["w","x","y","z"]}
			]}],
			"L3": [{"questions": []}]
		},
		"subjective": {
			"L2": [{"setName": "Essays", "questions": [
				{"question": "Explain mitosis", "answer": "It is...", "keyPoints": ["prophase", " metaphase ", "", "anaphase"]},
				{"question": "Explain meiosis", "answer": "It is...", "keywords": ["gametes", "crossing over"]},
				{"question": "Define cell", "answer": 42, "keywords": "unit, life"}
			]}]
		}
	}`

	res := Parse(raw)
	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	c := res.Content

	if c.Summary != "Cells divide." {
		t.Errorf("Summary = %q", c.Summary)
	}

	obj := c.Objective[models.L1]
	if len(obj) != 1 || obj[0].SetName != "Basics" {
		t.Fatalf("objective L1 = %+v", obj)
	}
	wantAnswers := []int{2, 1, 3, -1}
	for i, want := range wantAnswers {
		if got := obj[0].Questions[i].CorrectAnswer; got != want {
			t.Errorf("question %d correctAnswer = %d, want %d", i+1, got, want)
		}
	}
	if got := c.Objective[models.L3]; len(got) != 1 || got[0].SetName != "Set 1" {
		t.Errorf("objective L3 = %+v, want default set name", got)
	}

	subj := c.Subjective[models.L2][0].Questions
	wantKeywords := []string{"prophase, metaphase, anaphase", "gametes, crossing over", "unit, life"}
	for i, want := range wantKeywords {
		if subj[i].Keywords != want {
			t.Errorf("subjective %d keywords = %q, want %q", i+1, subj[i].Keywords, want)
		}
	}
	if subj[2].Answer != "42" {
		t.Errorf("numeric answer = %q, want \"42\"", subj[2].Answer)
	}
}

func TestParse_CanonicalLevelKeyWins(t *testing.T) {
	raw := `{"summary":"s","objective":{"beginner":[{"setName":"Alias","questions":[]}],"L1":[{"setName":"Canonical","questions":[]}]},"subjective":{}}`
	for i := 0; i < 10; i++ {
		res := Parse(raw)
		if got := res.Content.Objective[models.L1][0].SetName; got != "Canonical" {
			t.Fatalf("run %d: SetName = %q, want Canonical", i, got)
		}
	}
}

func TestParse_Pure(t *testing.T) {
	first := Parse(singleSetOutput)
	second := Parse(singleSetOutput)
	if !reflect.DeepEqual(first.Content, second.Content) {
		t.Error("Parse() should return identical content for identical input")
	}
	if first.Formatted != second.Formatted {
		t.Error("Parse() should return identical formatting for identical input")
	}
}

func TestFormat(t *testing.T) {
	res := Parse(singleSetOutput)
	out := res.Formatted

	for _, want := range []string{
		"SUMMARY\n(none)",
		"[L1 Beginner] Set 1 (2 questions)",
		"  1. Q1",
		"     A) a  (correct)",
		"     B) b  (correct)",
		"SUBJECTIVE QUESTIONS\n(none)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Formatted missing %q:\n%s", want, out)
		}
	}
}
