package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minSentenceLength = 20

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Sentences splits normalized text on terminal punctuation followed by
// whitespace and drops fragments of 20 characters or fewer.
func Sentences(text string) []string {
	var sentences []string
	for _, part := range sentenceBoundary.Split(text, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > minSentenceLength {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
