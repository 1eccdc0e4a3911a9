package util

import "strings"

// BracketCounts holds raw occurrence counts of JSON brackets in a span
type BracketCounts struct {
	OpenBraces    int
	CloseBraces   int
	OpenBrackets  int
	CloseBrackets int
}

// Balanced reports whether both bracket types have equal open and close counts
func (b BracketCounts) Balanced() bool {
	return b.OpenBraces == b.CloseBraces && b.OpenBrackets == b.CloseBrackets
}

// ObjectSpan returns the substring from the first '{' to the last '}' inclusive.
// ok is false when either brace is absent or the last '}' precedes the first '{'.
func ObjectSpan(s string) (span string, ok bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// CountBrackets counts every '{', '}', '[' and ']' in s.
// Characters inside string literals are counted too; callers rely on the
// plain counts as a truncation heuristic.
func CountBrackets(s string) BracketCounts {
	var c BracketCounts
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			c.OpenBraces++
		case '}':
			c.CloseBraces++
		case '[':
			c.OpenBrackets++
		case ']':
			c.CloseBrackets++
		}
	}
	return c
}

// JoinList joins trimmed, non-empty items with ", "
func JoinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ", ")
}
