package parser

import (
	"fmt"
	"strings"

	"github.com/lamim/contentforge/pkg/models"
)

// Format renders content as plain text for review
func Format(c models.GeneratedContent) string {
	var sb strings.Builder

	sb.WriteString("SUMMARY\n")
	if c.HasSummary() {
		sb.WriteString(c.Summary)
	} else {
		sb.WriteString("(none)")
	}
	sb.WriteString("\n")

	sb.WriteString("\nOBJECTIVE QUESTIONS\n")
	empty := true
	for _, l := range models.Levels {
		for _, set := range c.Objective[l] {
			empty = false
			writeSetHeader(&sb, l, set.SetName, len(set.Questions))
			for qi, q := range set.Questions {
				fmt.Fprintf(&sb, "  %d. %s\n", qi+1, q.Question)
				for oi, opt := range q.Options {
					marker := ""
					if oi == q.CorrectAnswer {
						marker = "  (correct)"
					}
					fmt.Fprintf(&sb, "     %c) %s%s\n", optionLetter(oi), opt, marker)
				}
			}
		}
	}
	if empty {
		sb.WriteString("(none)\n")
	}

	sb.WriteString("\nSUBJECTIVE QUESTIONS\n")
	empty = true
	for _, l := range models.Levels {
		for _, set := range c.Subjective[l] {
			empty = false
			writeSetHeader(&sb, l, set.SetName, len(set.Questions))
			for qi, q := range set.Questions {
				fmt.Fprintf(&sb, "  %d. %s\n", qi+1, q.Question)
				fmt.Fprintf(&sb, "     Answer: %s\n", q.Answer)
				if q.Keywords != "" {
					fmt.Fprintf(&sb, "     Keywords: %s\n", q.Keywords)
				}
			}
		}
	}
	if empty {
		sb.WriteString("(none)\n")
	}

	return sb.String()
}

func writeSetHeader(sb *strings.Builder, l models.Level, name string, questions int) {
	fmt.Fprintf(sb, "[%s %s] %s (%d question", l, l.Difficulty(), name, questions)
	if questions != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(")\n")
}

func optionLetter(i int) rune {
	if i < 26 {
		return rune('A' + i)
	}
	return '?'
}
