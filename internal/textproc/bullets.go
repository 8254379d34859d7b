package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxBullets is the number of bullets kept when no limit is configured.
	DefaultMaxBullets = 15

	minBulletLength       = 15
	minContinuationLength = 20
)

var (
	bulletStart   = regexp.MustCompile(`^[-•*]\s`)
	bulletPrefix  = regexp.MustCompile(`^[-•*\s]+`)
	leadingMarker = regexp.MustCompile(`^[-•*]\s*`)
)

// ExtractBullets returns up to maxBullets bullet points found in resume text.
//
// A line counts when it starts with a marker glyph followed by whitespace, or
// when it is longer than 20 characters and starts with a lowercase letter,
// which usually means a wrapped bullet whose marker got lost. This is a
// heuristic: acronyms and proper nouns at the start of an unmarked line are
// missed, and lowercase prose lines are picked up.
func ExtractBullets(text string, maxBullets int) []string {
	if maxBullets <= 0 {
		return []string{}
	}

	bullets := make([]string, 0, maxBullets)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !isBulletCandidate(line) {
			continue
		}

		clean := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(clean) <= minBulletLength {
			continue
		}

		bullets = append(bullets, clean)
		if len(bullets) == maxBullets {
			break
		}
	}
	return bullets
}

func isBulletCandidate(line string) bool {
	if bulletStart.MatchString(line) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(line)
	return utf8.RuneCountInString(line) > minContinuationLength && unicode.IsLower(first)
}

// StripMarker removes one leading bullet glyph and the whitespace after it.
func StripMarker(line string) string {
	return strings.TrimSpace(leadingMarker.ReplaceAllString(line, ""))
}

// HasMarker reports whether line starts with a bullet glyph.
func HasMarker(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}
