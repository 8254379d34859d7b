package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/types"
)

func sampleAnalysis() types.AnalyzeOutput {
	return types.AnalyzeOutput{
		ID:        "a1",
		Score:     72,
		ScoreBand: "Good, but can improve",
		Gaps:      []types.Gap{{Skill: "Docker", Reason: "Job requires Docker but it's not mentioned in your resume"}},
		GapSource: types.GapSourceKeywords,
		Evidence:  []types.EvidencePair{{ResumeSnippet: "Built Python | Go services", JDSnippet: "Python required"}},
		Bullets:   []string{"Led a team of five engineers", "Shipped the billing system"},
	}
}

func TestRegistryFormatsAnalysis(t *testing.T) {
	registry := NewFormatterRegistry()

	t.Run("text", func(t *testing.T) {
		out, err := registry.Format(sampleAnalysis(), "text")
		require.NoError(t, err)
		assert.Contains(t, out, "Score: 72/100 (Good, but can improve)")
		assert.Contains(t, out, "=== GAPS (keywords) ===")
		assert.Contains(t, out, "- Docker: Job requires Docker")
		assert.Contains(t, out, "• Led a team of five engineers\n")
	})

	t.Run("markdown escapes table cells", func(t *testing.T) {
		out, err := registry.Format(sampleAnalysis(), "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "# Resume Match Report")
		assert.Contains(t, out, `| Built Python \| Go services | Python required |`)
	})

	t.Run("pointer formats like value", func(t *testing.T) {
		result := sampleAnalysis()
		fromPointer, err := registry.Format(&result, "text")
		require.NoError(t, err)
		fromValue, err := registry.Format(result, "text")
		require.NoError(t, err)
		assert.Equal(t, fromValue, fromPointer)
	})

	t.Run("json", func(t *testing.T) {
		out, err := registry.Format(sampleAnalysis(), "json")
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, float64(72), decoded["score"])
		assert.Equal(t, "keywords", decoded["gapSource"])
	})
}

func TestRegistryFormatsRewrites(t *testing.T) {
	registry := NewFormatterRegistry()
	batch := types.BatchRewriteOutput{Results: []types.RewriteOutput{
		{Original: "did stuff", Revised: "Delivered stuff", Rationale: "Stronger verb"},
		{Original: "fixed bugs", Revised: "fixed bugs", Rationale: "Rewrite not configured"},
	}}

	out, err := registry.Format(batch, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "=== BULLET 1 ===\nOriginal:\ndid stuff")
	assert.Contains(t, out, "=== BULLET 2 ===")

	out, err = registry.Format(batch.Results[0], "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "**Revised:** Delivered stuff")
}

func TestBulletListSkipsBlankEntries(t *testing.T) {
	out, err := NewFormatterRegistry().Format(types.BulletList{Bullets: []string{"one", "  ", "two"}}, "text")
	require.NoError(t, err)
	assert.Equal(t, "• one\n• two\n", out)
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewFormatterRegistry().Format(sampleAnalysis(), "xml")
	assert.EqualError(t, err, "no formatter found for format 'xml' and type 'AnalyzeOutput'")
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
