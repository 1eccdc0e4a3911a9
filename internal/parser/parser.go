// Package parser turns raw model output into GeneratedContent.
//
// Truncation is detected structurally: the span from the first '{' to the
// last '}' is checked for equal open and close counts of braces and of
// brackets. An unequal count means the output was cut off and is never
// decoded. A balanced span that fails to decode, or lacks one of the
// summary/objective/subjective keys, is malformed and not worth retrying.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lamim/contentforge/internal/util"
	"github.com/lamim/contentforge/pkg/models"
)

var (
	// ErrTruncatedOutput marks output whose JSON span has unbalanced brackets
	ErrTruncatedOutput = errors.New("truncated model output")
	// ErrMalformedContent marks complete output that is not the expected JSON object
	ErrMalformedContent = errors.New("malformed model output")
)

const (
	// TruncatedSummary is the placeholder summary for truncated output
	TruncatedSummary = "Content was truncated, retrying..."
	// MalformedSummary prefixes the summary of default content for malformed output
	MalformedSummary = "Content generation failed: the model response could not be parsed. Please try again."
)

var requiredKeys = []string{"summary", "objective", "subjective"}

// Result is the outcome of parsing one model response
type Result struct {
	IsTruncated bool
	Content     models.GeneratedContent
	Formatted   string
	// Err is nil for usable content and wraps ErrTruncatedOutput or ErrMalformedContent otherwise
	Err error
}

// Status maps the result onto a draft status
func (r Result) Status() models.DraftStatus {
	switch {
	case r.IsTruncated:
		return models.DraftTruncated
	case r.Err != nil:
		return models.DraftMalformed
	default:
		return models.DraftOK
	}
}

// Parse extracts and normalizes generated content from raw model text.
// It is pure: identical input yields an identical Result.
func Parse(raw string) Result {
	span, ok := util.ObjectSpan(raw)
	if !ok {
		return malformed(fmt.Errorf("%w: no JSON object found", ErrMalformedContent))
	}

	counts := util.CountBrackets(span)
	if !counts.Balanced() {
		content := models.NewPlaceholderContent(TruncatedSummary)
		return Result{
			IsTruncated: true,
			Content:     content,
			Formatted:   Format(content),
			Err: fmt.Errorf("%w: braces %d/%d, brackets %d/%d", ErrTruncatedOutput,
				counts.OpenBraces, counts.CloseBraces, counts.OpenBrackets, counts.CloseBrackets),
		}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &top); err != nil {
		return malformed(fmt.Errorf("%w: %v", ErrMalformedContent, err))
	}
	for _, key := range requiredKeys {
		if _, ok := top[key]; !ok {
			return malformed(fmt.Errorf("%w: missing %q key", ErrMalformedContent, key))
		}
	}

	content, err := decodeContent(top)
	if err != nil {
		return malformed(fmt.Errorf("%w: %v", ErrMalformedContent, err))
	}

	return Result{
		Content:   content,
		Formatted: Format(content),
	}
}

func malformed(err error) Result {
	content := models.NewPlaceholderContent(MalformedSummary)
	return Result{
		Content:   content,
		Formatted: Format(content),
		Err:       err,
	}
}
