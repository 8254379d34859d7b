package analysis

import (
	"context"
	"fmt"
	"strings"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/textproc"
	"resumatch/internal/types"
	"resumatch/internal/vocabulary"
)

const (
	// DefaultMaxGaps is the number of gaps kept when no limit is configured.
	DefaultMaxGaps = 10

	gapInputLimit        = 3000
	minGapSkillLength    = 5
	minGapReasonLength   = 10
	shortGapSkillLength  = 50
	wordsBeforeSkillCut  = 5
	skillWordsFromPhrase = 3
	missingRequirement   = "Missing requirement"
)

// GapAnalyzer asks the generative backend for missing requirements and falls
// back to keyword matching when no backend is configured.
type GapAnalyzer struct {
	generator  ai.Generator
	vocabulary vocabulary.Provider
	prompts    config.PromptConfig
	logger     *errors.Logger
}

// NewGapAnalyzer creates a gap analyzer. generator may be nil.
func NewGapAnalyzer(generator ai.Generator, vocab vocabulary.Provider, prompts config.PromptConfig, logger *errors.Logger) *GapAnalyzer {
	return &GapAnalyzer{
		generator:  generator,
		vocabulary: vocab,
		prompts:    prompts,
		logger:     logger,
	}
}

// AnalyzeGaps returns at most maxGaps gaps in discovery order together with
// the path that produced them. It never fails: backend errors become a single
// "Analysis Error" gap.
func (g *GapAnalyzer) AnalyzeGaps(ctx context.Context, resume, jobDescription string, maxGaps int) ([]types.Gap, types.GapSource) {
	if g.generator == nil {
		return limitGaps(FallbackGaps(g.vocabulary.Vocabulary(), resume, jobDescription), maxGaps), types.GapSourceKeywords
	}

	prompt, err := ai.BuildPrompt(config.OperationGapAnalysis, g.prompts, ai.GapPromptData{
		Resume:         textproc.Truncate(textproc.Normalize(resume), gapInputLimit),
		JobDescription: textproc.Truncate(textproc.Normalize(jobDescription), gapInputLimit),
	})
	if err != nil {
		g.logger.LogError(err, "Failed to build gap analysis prompt")
		return limitGaps(analysisErrorGaps(err), maxGaps), types.GapSourceError
	}

	text, _, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		g.logger.LogError(err, "Gap analysis request failed")
		return limitGaps(analysisErrorGaps(err), maxGaps), types.GapSourceError
	}

	gaps := ParseGaps(text)
	if len(gaps) == 0 {
		g.logger.Debug("No gaps could be parsed from model output", "response_length", len(text))
		gaps = []types.Gap{ReviewRequiredGap}
	}
	return limitGaps(gaps, maxGaps), types.GapSourceModel
}

func analysisErrorGaps(err error) []types.Gap {
	return []types.Gap{{
		Skill:  analysisErrorSkill,
		Reason: fmt.Sprintf("Error analyzing gaps: %v", err),
	}}
}

// ParseGaps reads "Skill: Reason" items from a bulleted model response.
// Only lines starting with a bullet glyph are considered. Items whose skill
// is 5 characters or shorter, or whose reason is 10 or shorter, are dropped.
func ParseGaps(text string) []types.Gap {
	var gaps []types.Gap
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || !textproc.HasMarker(line) {
			continue
		}

		skill, reason := splitGapLine(textproc.StripMarker(line))
		skill = strings.TrimSpace(skill)
		reason = strings.TrimSpace(reason)

		if textproc.Length(skill) > minGapSkillLength && textproc.Length(reason) > minGapReasonLength {
			gaps = append(gaps, types.Gap{Skill: skill, Reason: reason})
		}
	}
	return gaps
}

func splitGapLine(line string) (skill, reason string) {
	if before, after, found := strings.Cut(line, ":"); found {
		return before, after
	}

	words := strings.Fields(line)
	if len(words) > wordsBeforeSkillCut {
		return strings.Join(words[:skillWordsFromPhrase], " "), strings.Join(words[skillWordsFromPhrase:], " ")
	}
	return textproc.Truncate(line, shortGapSkillLength), missingRequirement
}
