package validators

import "strings"

// SanitizeString trims whitespace and caps free-text input, cutting on a rune
// boundary so multibyte characters are never split.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
