package util

import (
	"fmt"
	"strings"
	"text/template"
)

// forbiddenDirectives could be used to smuggle logic into user-supplied prompt templates
var forbiddenDirectives = []string{"{{call", "{{define", "{{template", "{{block"}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// ParseTemplate validates and parses a prompt template.
// Missing map keys fail execution instead of rendering "<no value>".
func ParseTemplate(name, tmpl string) (*template.Template, error) {
	for _, directive := range forbiddenDirectives {
		if strings.Contains(tmpl, directive) {
			return nil, fmt.Errorf("template %s contains forbidden directive: %s", name, directive)
		}
	}

	t, err := template.New(name).
		Option("missingkey=error").
		Funcs(templateFuncs).
		Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return t, nil
}

// TruncateString truncates a string to maxLen runes (Unicode-safe)
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
