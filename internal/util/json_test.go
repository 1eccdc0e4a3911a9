package util

import "testing"

func TestObjectSpan(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "plain object",
			input:  `{"key": "value"}`,
			want:   `{"key": "value"}`,
			wantOK: true,
		},
		{
			name:   "object in markdown",
			input:  "```json\n{\"a\": 1}\n```",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "prose around object",
			input:  `Here you go: {"a": {"b": 2}} Hope this helps!`,
			want:   `{"a": {"b": 2}}`,
			wantOK: true,
		},
		{
			name:   "spans first open to last close",
			input:  `{"a": 1} and {"b": 2}`,
			want:   `{"a": 1} and {"b": 2}`,
			wantOK: true,
		},
		{
			name:   "no braces",
			input:  `just some text`,
			wantOK: false,
		},
		{
			name:   "no closing brace",
			input:  `{"a": [1, 2`,
			wantOK: false,
		},
		{
			name:   "closing before opening",
			input:  `} oops {`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ObjectSpan(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ObjectSpan() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ObjectSpan() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountBrackets(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         BracketCounts
		wantBalanced bool
	}{
		{
			name:         "balanced",
			input:        `{"a": [1, {"b": []}]}`,
			want:         BracketCounts{OpenBraces: 2, CloseBraces: 2, OpenBrackets: 2, CloseBrackets: 2},
			wantBalanced: true,
		},
		{
			name:         "missing array close",
			input:        `{"a": [1, 2}`,
			want:         BracketCounts{OpenBraces: 1, CloseBraces: 1, OpenBrackets: 1},
			wantBalanced: false,
		},
		{
			name:         "extra nested brace open",
			input:        `{"a": {"b": 1}`,
			want:         BracketCounts{OpenBraces: 2, CloseBraces: 1},
			wantBalanced: false,
		},
		{
			name:         "brackets inside strings are counted",
			input:        `{"a": "x [ y"}`,
			want:         BracketCounts{OpenBraces: 1, CloseBraces: 1, OpenBrackets: 1},
			wantBalanced: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountBrackets(tt.input)
			if got != tt.want {
				t.Errorf("CountBrackets() = %+v, want %+v", got, tt.want)
			}
			if got.Balanced() != tt.wantBalanced {
				t.Errorf("Balanced() = %v, want %v", got.Balanced(), tt.wantBalanced)
			}
		})
	}
}

func TestJoinList(t *testing.T) {
	got := JoinList([]string{" light ", "", "chlorophyll", "  "})
	if got != "light, chlorophyll" {
		t.Errorf("JoinList() = %q", got)
	}
	if JoinList(nil) != "" {
		t.Error("JoinList(nil) should be empty")
	}
}
