package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
// Used for list-valued settings such as ENRICH_PROVIDERS.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// NormalizeSymbol upper-cases and trims a ticker.
// Class-share dots are mapped to dashes ("BRK.B" -> "BRK-B"), the form Yahoo expects.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(s, ".", "-")
}

// NormalizeText lower-cases and collapses whitespace for case-insensitive matching.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContainsWordStart reports whether sub occurs in s beginning at a word start,
// so "tech" matches "Information Technology" but not "Biotechnology".
// The match may end mid-word ("semiconductor" matches "Semiconductors").
func ContainsWordStart(s, sub string) bool {
	if sub == "" {
		return false
	}
	for offset := 0; offset <= len(s)-len(sub); {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		offset = i + size
	}
	return false
}
