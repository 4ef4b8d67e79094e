package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "yahoo",
			expected: []string{"yahoo"},
		},
		{
			name:     "two values",
			input:    "yahoo, alphavantage",
			expected: []string{"yahoo", "alphavantage"},
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "comma only",
			input:    ",",
			expected: nil,
		},
		{
			name:     "multiple commas",
			input:    ",,yahoo,,alphavantage,,",
			expected: []string{"yahoo", "alphavantage"},
		},
		{
			name:     "value with internal spaces preserved",
			input:    "Consumer Goods, Real Estate",
			expected: []string{"Consumer Goods", "Real Estate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCSV(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"BRK.B", "BRK-B"},
		{"bf.b", "BF-B"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSymbol(tt.input))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "consumer electronics", NormalizeText("  Consumer   Electronics "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestContainsWordStart(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"information technology", "tech", true},
		{"biotechnology", "tech", false},
		{"health care biotechnology", "biotech", true},
		{"semiconductors", "semiconductor", true},
		{"integrated oil & gas", "gas", true},
		{"soil testing", "oil", false},
		{"toil and oil", "oil", true},
		{"e-commerce", "commerce", true},
		{"anything", "", false},
		{"", "tech", false},
		{"énergie électrique", "électrique", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.sub, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsWordStart(tt.s, tt.sub))
		})
	}
}
