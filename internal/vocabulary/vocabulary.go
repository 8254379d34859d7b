// Package vocabulary holds the term lists used by keyword gap detection and
// evidence linking. Lists are ordered: detection results follow list order.
package vocabulary

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Term is a lowercase match string and the form shown to users.
type Term struct {
	Term    string `yaml:"term" json:"term"`
	Display string `yaml:"display,omitempty" json:"display,omitempty"`
}

// Label returns the display form, deriving one from the term when unset.
func (t Term) Label() string {
	if t.Display != "" {
		return t.Display
	}
	return DisplayForm(t.Term)
}

// Set is the pair of vocabularies consumed by the analysis pipeline.
type Set struct {
	// Skills drive keyword gap detection.
	Skills []Term `yaml:"skills" json:"skills"`
	// Evidence terms select job description keywords for evidence linking.
	Evidence []Term `yaml:"evidence" json:"evidence"`
}

// Provider hands out the current vocabulary set.
type Provider interface {
	Vocabulary() *Set
}

var (
	defaultSkills = []string{
		"python", "javascript", "react", "node.js", "aws", "docker",
		"kubernetes", "sql", "postgresql", "mongodb", "graphql",
		"typescript", "java", "go", "rust", "terraform", "ci/cd",
	}
	defaultEvidence = []string{
		"python", "javascript", "react", "node", "aws", "docker", "kubernetes",
		"sql", "postgresql", "mongodb", "redis", "graphql", "rest", "api",
		"machine learning", "deep learning", "tensorflow", "pytorch",
		"agile", "scrum", "ci/cd", "git", "github", "gitlab",
	}
)

// Default returns the built-in vocabulary set.
func Default() *Set {
	return &Set{
		Skills:   termsFrom(defaultSkills),
		Evidence: termsFrom(defaultEvidence),
	}
}

// Vocabulary lets a fixed Set serve as a Provider.
func (s *Set) Vocabulary() *Set {
	return s
}

func termsFrom(words []string) []Term {
	terms := make([]Term, len(words))
	for i, w := range words {
		terms[i] = Term{Term: w, Display: DisplayForm(w)}
	}
	return terms
}

// DisplayForm title-cases every run of letters independently, so "node.js"
// becomes "Node.Js" and "ci/cd" becomes "Ci/Cd".
func DisplayForm(term string) string {
	caser := cases.Title(language.English)

	var b strings.Builder
	var word []rune
	flush := func() {
		if len(word) > 0 {
			b.WriteString(caser.String(string(word)))
			word = word[:0]
		}
	}
	for _, r := range term {
		if unicode.IsLetter(r) {
			word = append(word, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// MissingSkills returns skill terms present in jd but absent from resume,
// in vocabulary order. Matching is a lowercase substring test.
func (s *Set) MissingSkills(resume, jd string) []Term {
	resumeLower := strings.ToLower(resume)
	jdLower := strings.ToLower(jd)

	var missing []Term
	for _, t := range s.Skills {
		if strings.Contains(jdLower, t.Term) && !strings.Contains(resumeLower, t.Term) {
			missing = append(missing, t)
		}
	}
	return missing
}

// EvidenceTerms returns up to limit evidence terms found in text, in vocabulary order.
func (s *Set) EvidenceTerms(text string, limit int) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, t := range s.Evidence {
		if len(found) == limit {
			break
		}
		if strings.Contains(lower, t.Term) {
			found = append(found, t.Term)
		}
	}
	return found
}

// Validate checks that every term is non-empty and lowercase.
func (s *Set) Validate() error {
	if len(s.Skills) == 0 && len(s.Evidence) == 0 {
		return fmt.Errorf("vocabulary has no terms")
	}
	for _, list := range [][]Term{s.Skills, s.Evidence} {
		for i, t := range list {
			if strings.TrimSpace(t.Term) == "" {
				return fmt.Errorf("term %d is empty", i)
			}
			if t.Term != strings.ToLower(t.Term) {
				return fmt.Errorf("term %q must be lowercase", t.Term)
			}
		}
	}
	return nil
}

// LoadFile reads a YAML vocabulary file. Lists missing from the file keep
// their built-in defaults.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}

	var parsed Set
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}

	set := Default()
	if len(parsed.Skills) > 0 {
		set.Skills = normalizeTerms(parsed.Skills)
	}
	if len(parsed.Evidence) > 0 {
		set.Evidence = normalizeTerms(parsed.Evidence)
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary file %s: %w", path, err)
	}
	return set, nil
}

func normalizeTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Term: strings.TrimSpace(t.Term), Display: strings.TrimSpace(t.Display)}
	}
	return out
}

// Holder keeps the active vocabulary and lets it be swapped at runtime.
type Holder struct {
	current atomic.Pointer[Set]
}

// NewHolder returns a holder serving set, or the defaults when set is nil.
func NewHolder(set *Set) *Holder {
	if set == nil {
		set = Default()
	}
	h := &Holder{}
	h.current.Store(set)
	return h
}

// Vocabulary returns the active set.
func (h *Holder) Vocabulary() *Set {
	return h.current.Load()
}

// Replace swaps in a new set.
func (h *Holder) Replace(set *Set) {
	if set != nil {
		h.current.Store(set)
	}
}
