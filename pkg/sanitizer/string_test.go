package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing spaces", "  John Doe  ", "John Doe"},
		{"multiple inner spaces", "John    Doe", "John Doe"},
		{"tabs and newlines", "John\t\nDoe", "John Doe"},
		{"already normalized", "John Doe", "John Doe"},
		{"unicode name", "  José   García ", "José García"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  John   Doe ", "José García", "", "a\tb\nc"}

	for _, input := range inputs {
		once := TrimAndNormalize(input)
		twice := TrimAndNormalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first=%q second=%q", input, once, twice)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"user@example.com", "user@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.expected {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
