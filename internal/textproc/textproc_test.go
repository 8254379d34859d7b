package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"mixed runs", "  Senior\t\tGo   engineer\n\nremote  ", "Senior Go engineer remote"},
		{"already normalized", "a b c", "a b c"},
		{"unicode spaces", "led team of five", "led team of five"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Normalize(got), "normalization must be idempotent")
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("anything", 0))

	long := strings.Repeat("x", 151)
	got := TruncateWithEllipsis(long, 150, 140)
	assert.Equal(t, 143, Length(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "fits", TruncateWithEllipsis("fits", 150, 140))
}

func TestExtractBullets(t *testing.T) {
	resume := strings.Join([]string{
		"Jane Doe",
		"Software Engineer",
		"- Built a payment service handling 2M requests per day",
		"• Migrated monolith to Kubernetes with zero downtime",
		"* Short one",
		"and mentored four junior engineers on code review",
		"Python, Go, SQL",
		"-NoSpaceAfterMarker but long enough to count",
		"",
		"   - Indented bullet that is long enough to keep",
	}, "\n")

	got := ExtractBullets(resume, DefaultMaxBullets)

	assert.Equal(t, []string{
		"Built a payment service handling 2M requests per day",
		"Migrated monolith to Kubernetes with zero downtime",
		"and mentored four junior engineers on code review",
		"Indented bullet that is long enough to keep",
	}, got)
}

func TestExtractBulletsBound(t *testing.T) {
	var lines []string
	for range 40 {
		lines = append(lines, "- delivered a feature that customers actually used")
	}
	text := strings.Join(lines, "\n")

	for _, k := range []int{0, 1, 5, 15, 40, 100} {
		got := ExtractBullets(text, k)
		assert.LessOrEqual(t, len(got), k)
		for _, b := range got {
			assert.Greater(t, Length(b), 15)
		}
	}
}

func TestExtractBulletsNoMatches(t *testing.T) {
	assert.Empty(t, ExtractBullets("Summary\nExperienced Engineer\nSkills", 15))
	assert.Empty(t, ExtractBullets("", 15))
}

func TestStripMarker(t *testing.T) {
	assert.Equal(t, "Led a team", StripMarker("- Led a team"))
	assert.Equal(t, "Led a team", StripMarker("•Led a team"))
	assert.Equal(t, "Led a team", StripMarker("Led a team"))
	assert.True(t, HasMarker("* item"))
	assert.False(t, HasMarker("item"))
}

func TestSentences(t *testing.T) {
	text := "Built APIs in Go for payments. Short one! Worked with Kubernetes clusters daily? Trailing text without a stop"
	assert.Equal(t, []string{
		"Built APIs in Go for payments",
		"Worked with Kubernetes clusters daily",
		"Trailing text without a stop",
	}, Sentences(text))
	assert.Empty(t, Sentences(""))
}
