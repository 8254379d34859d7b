package analysis

import (
	"strings"

	"resumatch/internal/textproc"
	"resumatch/internal/types"
	"resumatch/internal/vocabulary"
)

const (
	// DefaultMaxEvidence is the number of evidence pairs kept when no limit is configured.
	DefaultMaxEvidence = 10

	evidenceSnippetLimit = 200
	evidenceTermHits     = 10
	evidenceTopTerms     = 5
	evidenceSentenceScan = 20
)

// EvidenceLinker pairs resume sentences with job description sentences that
// mention the same key term.
type EvidenceLinker struct {
	vocabulary vocabulary.Provider
}

// NewEvidenceLinker creates an evidence linker over the given vocabulary
func NewEvidenceLinker(vocab vocabulary.Provider) *EvidenceLinker {
	return &EvidenceLinker{vocabulary: vocab}
}

// ExtractEvidence returns at most maxEvidence pairs. When no sentence pair
// shares a term it returns one pair built from the start of each text.
func (l *EvidenceLinker) ExtractEvidence(resume, jobDescription string, maxEvidence int) []types.EvidencePair {
	if maxEvidence <= 0 {
		return []types.EvidencePair{}
	}

	resumeClean := textproc.Normalize(resume)
	jdClean := textproc.Normalize(jobDescription)

	resumeSentences := firstN(textproc.Sentences(resumeClean), evidenceSentenceScan)
	jdSentences := firstN(textproc.Sentences(jdClean), evidenceSentenceScan)

	var evidence []types.EvidencePair
	if len(resumeSentences) > 0 && len(jdSentences) > 0 {
		terms := firstN(l.vocabulary.Vocabulary().EvidenceTerms(jdClean, evidenceTermHits), evidenceTopTerms)
		evidence = linkSentences(resumeSentences, jdSentences, terms, maxEvidence)
	}

	if len(evidence) == 0 {
		return []types.EvidencePair{fallbackEvidence(resumeClean, jdClean)}
	}
	return evidence
}

// linkSentences emits at most one pair per resume sentence: the first term
// the sentence contains decides the pair, even when no JD sentence has it.
func linkSentences(resumeSentences, jdSentences, terms []string, maxEvidence int) []types.EvidencePair {
	var evidence []types.EvidencePair
	for _, rs := range resumeSentences {
		rsLower := strings.ToLower(rs)
		for _, term := range terms {
			if !strings.Contains(rsLower, term) {
				continue
			}
			if js, ok := firstContaining(jdSentences, term); ok {
				evidence = append(evidence, types.EvidencePair{
					ResumeSnippet: textproc.Truncate(rs, evidenceSnippetLimit),
					JDSnippet:     textproc.Truncate(js, evidenceSnippetLimit),
				})
			}
			break
		}
		if len(evidence) >= maxEvidence {
			break
		}
	}
	return evidence
}

func firstContaining(sentences []string, term string) (string, bool) {
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), term) {
			return s, true
		}
	}
	return "", false
}

func fallbackEvidence(resumeClean, jdClean string) types.EvidencePair {
	pair := types.EvidencePair{
		ResumeSnippet: "Resume content",
		JDSnippet:     "Job description content",
	}
	if resumeClean != "" {
		pair.ResumeSnippet = textproc.Truncate(resumeClean, evidenceSnippetLimit)
	}
	if jdClean != "" {
		pair.JDSnippet = textproc.Truncate(jdClean, evidenceSnippetLimit)
	}
	return pair
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
