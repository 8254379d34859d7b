// Package analysis implements the resume/job matching pipeline: gap
// detection, evidence linking, bullet rewriting and the orchestrator that
// assembles one analysis result.
package analysis

import (
	"fmt"

	"resumatch/internal/types"
	"resumatch/internal/vocabulary"
)

// Sentinel gaps emitted when no concrete gap can be reported.
var (
	ConfigurationNoteGap = types.Gap{
		Skill:  "Configuration Note",
		Reason: "Gemini API key not configured. Add GEMINI_API_KEY to .env for AI-powered gap analysis. Basic keyword matching used instead.",
	}
	ReviewRequiredGap = types.Gap{
		Skill:  "Review Required",
		Reason: "Unable to automatically identify gaps. Please review job requirements manually.",
	}
)

const analysisErrorSkill = "Analysis Error"

// FallbackGaps reports vocabulary skills that appear in the job description
// but not in the resume. It is deterministic and never returns an empty
// slice: when nothing is missing it returns ConfigurationNoteGap.
//
// Keyword gaps are exempt from the length filter applied to model output, so
// short skills such as "React" or "Go" are kept.
func FallbackGaps(vocab *vocabulary.Set, resume, jobDescription string) []types.Gap {
	missing := vocab.MissingSkills(resume, jobDescription)
	if len(missing) == 0 {
		return []types.Gap{ConfigurationNoteGap}
	}

	gaps := make([]types.Gap, 0, len(missing))
	for _, term := range missing {
		label := term.Label()
		gaps = append(gaps, types.Gap{
			Skill:  label,
			Reason: fmt.Sprintf("Job requires %s but it's not mentioned in your resume", label),
		})
	}
	return gaps
}

func limitGaps(gaps []types.Gap, maxGaps int) []types.Gap {
	if maxGaps <= 0 {
		return []types.Gap{}
	}
	if len(gaps) > maxGaps {
		return gaps[:maxGaps]
	}
	return gaps
}
