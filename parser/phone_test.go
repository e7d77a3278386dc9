package parser

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		region   string
		expected string
	}{
		{
			name:     "labeled US number",
			input:    "Phone: +1 650-253-0000",
			region:   "US",
			expected: "+16502530000",
		},
		{
			name:     "tel href",
			input:    "tel:+16502530000",
			region:   "US",
			expected: "+16502530000",
		},
		{
			name:     "indonesian label and local format",
			input:    "Telepon: 0812-3456-7890",
			region:   "ID",
			expected: "+6281234567890",
		},
		{
			name:     "number with trailing label text",
			input:    "Phone: +1 650-253-0000 · Open 24 hours",
			region:   "US",
			expected: "+16502530000",
		},
		{
			name:     "too short to be valid stays cleaned",
			input:    "Call: 12345",
			region:   "US",
			expected: "12345",
		},
		{
			name:     "no digits passes through",
			input:    "no phone available",
			region:   "US",
			expected: "no phone available",
		},
		{
			name:     "empty",
			input:    "",
			region:   "US",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePhone(tt.input, tt.region)
			if result != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
