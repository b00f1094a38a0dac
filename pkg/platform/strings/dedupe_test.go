package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice stays nil",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice stays empty",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"contrat.pdf"},
			expected: []string{"contrat.pdf"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  contrat.pdf  ", "facture.pdf  ", "  devis.pdf"},
			expected: []string{"contrat.pdf", "facture.pdf", "devis.pdf"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"a.pdf", "b.pdf", "a.pdf", "c.pdf", "b.pdf"},
			expected: []string{"a.pdf", "b.pdf", "c.pdf"},
		},
		{
			name:     "removes empty and whitespace-only entries",
			input:    []string{"a.pdf", "", "  ", "b.pdf"},
			expected: []string{"a.pdf", "b.pdf"},
		},
		{
			name:     "trim then dedupe",
			input:    []string{"  a.pdf ", "b.pdf", "a.pdf", "", "  ", "b.pdf"},
			expected: []string{"a.pdf", "b.pdf"},
		},
		{
			name:     "case is significant",
			input:    []string{"Contrat.pdf", "contrat.pdf"},
			expected: []string{"Contrat.pdf", "contrat.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
