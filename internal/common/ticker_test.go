package common

import (
	"testing"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		input      string
		wantCode   string
		wantString string
	}{
		// Plain symbols
		{"AAPL", "AAPL", "AAPL"},
		{"MSFT", "MSFT", "MSFT"},

		// Case normalization
		{"aapl", "AAPL", "AAPL"},
		{"Brk.b", "BRK.B", "BRK.B"},

		// Whitespace handling
		{"  msft  ", "MSFT", "MSFT"},

		// Class-share suffix preserved
		{"BRK.B", "BRK.B", "BRK.B"},

		// Empty input
		{"", "", ""},
		{"   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseTicker(tt.input)

			if result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
			if result.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", result.String(), tt.wantString)
			}
		})
	}
}

func TestTicker_IsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"AAPL", true},
		{"A", true},
		{"GOOGL", true},
		{"BRK.B", true},
		{"aapl", true}, // normalized before validation

		{"", false},
		{"   ", false},
		{"TOOLONG", false},
		{"123", false},
		{"AAPL.BB", false},
		{"AA PL", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed := ParseTicker(tt.input)
			if got := parsed.IsValid(); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTicker_RawPreserved(t *testing.T) {
	parsed := ParseTicker("  aapl ")
	if parsed.Raw != "  aapl " {
		t.Errorf("Raw = %q, want original input", parsed.Raw)
	}
}
