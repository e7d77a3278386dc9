package parser

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "  Kopi   Kenangan\n Grand  Indonesia ", "Kopi Kenangan Grand Indonesia"},
		{"single word", "Bakery", "Bakery"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanText(tt.input)
			if result != tt.expected {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCleanWebsiteURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain https", "https://example.com", "https://example.com"},
		{"plain http with path", "http://site.co.id/page?x=1", "http://site.co.id/page?x=1"},
		{"bare domain gets scheme", "example.com", "https://example.com"},
		{"google redirect unwrapped", "https://www.google.com/url?q=https://real.example.com/home&sa=z", "https://real.example.com/home"},
		{"whitespace trimmed", "  https://example.com  ", "https://example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanWebsiteURL(tt.input)
			if result != tt.expected {
				t.Errorf("CleanWebsiteURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
