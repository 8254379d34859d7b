// Package textproc holds the deterministic text helpers shared by the
// analysis pipeline: whitespace normalization, bullet extraction, sentence
// splitting and rune-safe truncation.
package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses every run of whitespace to a single space and trims the result.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Length returns the number of characters in s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns at most limit characters of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// TruncateWithEllipsis returns s unchanged when it fits in max characters,
// otherwise the first keep characters followed by "...".
func TruncateWithEllipsis(s string, max, keep int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return Truncate(s, keep) + "..."
}
