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
)

const (
	rewriteJDLimit        = 1500
	rewriteContextLimit   = 500
	maxRevisedLength      = 150
	revisedKeepOnOverflow = 140
	maxRationaleLength    = 300
	noMarkerLineLimit     = 150
	noMarkerRationale     = 200

	rewrittenMarker = "Rewritten:"
	rationaleMarker = "Rationale:"

	// DefaultRationale is used when the model gives no usable rationale.
	DefaultRationale = "Rewritten to better match job requirements."
	// NotConfiguredRationale is returned when no generative backend is set.
	NotConfiguredRationale = "API not configured. Set GEMINI_API_KEY to enable AI-powered rewrites."
	// RewriteErrorPrefix starts the rationale of a rewrite whose backend call failed.
	RewriteErrorPrefix = "Error during rewrite: "
)

// rewriteParse is one reading of a model response
type rewriteParse struct {
	revised   string
	rationale string
}

// rewriteStrategy tries to read a response; ok is false when the strategy
// does not apply.
type rewriteStrategy struct {
	name  string
	parse func(text string) (rewriteParse, bool)
}

// rewriteStrategies are tried in order; the first that applies wins.
var rewriteStrategies = []rewriteStrategy{
	{name: "markerPair", parse: parseMarkerPair},
	{name: "singleMarker", parse: parseSingleMarker},
	{name: "noMarker", parse: parseNoMarker},
}

// parseMarkerPair reads "Rewritten: ... Rationale: ...", rationale optional.
func parseMarkerPair(text string) (rewriteParse, bool) {
	_, rest, found := strings.Cut(text, rewrittenMarker)
	if !found {
		return rewriteParse{}, false
	}
	parts := strings.Split(rest, rationaleMarker)
	if len(parts) == 1 {
		return rewriteParse{revised: strings.TrimSpace(rest)}, true
	}
	return rewriteParse{
		revised:   strings.TrimSpace(parts[0]),
		rationale: strings.TrimSpace(parts[1]),
	}, true
}

// parseSingleMarker reads "... Rationale: ...": everything before the marker is the bullet.
func parseSingleMarker(text string) (rewriteParse, bool) {
	before, after, found := strings.Cut(text, rationaleMarker)
	if !found {
		return rewriteParse{}, false
	}
	return rewriteParse{
		revised:   strings.TrimSpace(before),
		rationale: strings.TrimSpace(after),
	}, true
}

// parseNoMarker takes the first non-empty line as the bullet and the next two as rationale.
func parseNoMarker(text string) (rewriteParse, bool) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return rewriteParse{}, false
	}

	parsed := rewriteParse{revised: textproc.Truncate(lines[0], noMarkerLineLimit)}
	if len(lines) > 1 {
		parsed.rationale = textproc.Truncate(strings.Join(firstN(lines[1:], 2), " "), noMarkerRationale)
	}
	return parsed, true
}

// ParseRewrite turns a free-text model response into a revised bullet and
// rationale, enforcing the output length limits.
func ParseRewrite(original, text string) (revised, rationale string) {
	text = strings.TrimSpace(text)

	var parsed rewriteParse
	for _, strategy := range rewriteStrategies {
		if p, ok := strategy.parse(text); ok {
			parsed = p
			break
		}
	}

	revised = textproc.StripMarker(parsed.revised)
	if revised == "" {
		revised = original
	}
	revised = textproc.TruncateWithEllipsis(revised, maxRevisedLength, revisedKeepOnOverflow)

	rationale = parsed.rationale
	if rationale == "" {
		rationale = DefaultRationale
	}
	return revised, textproc.Truncate(rationale, maxRationaleLength)
}

// BulletRewriter rewrites single resume bullets against a job description
type BulletRewriter struct {
	generator ai.Generator
	prompts   config.PromptConfig
	logger    *errors.Logger
}

// NewBulletRewriter creates a rewriter. generator may be nil.
func NewBulletRewriter(generator ai.Generator, prompts config.PromptConfig, logger *errors.Logger) *BulletRewriter {
	return &BulletRewriter{generator: generator, prompts: prompts, logger: logger}
}

// RewriteBullet never fails: without a backend, or when the backend errors,
// the original bullet is returned with an explanatory rationale. When
// jobDescription is blank, resumeContext stands in for it.
// Callers validate original beforehand.
func (r *BulletRewriter) RewriteBullet(ctx context.Context, original, jobDescription, resumeContext string) types.RewriteOutput {
	original = strings.TrimSpace(original)
	result := types.RewriteOutput{Original: original, Revised: original}

	if r.generator == nil {
		result.Rationale = NotConfiguredRationale
		return result
	}

	// A lone context is the job signal.
	if strings.TrimSpace(jobDescription) == "" {
		jobDescription, resumeContext = resumeContext, ""
	}

	data := ai.RewritePromptData{
		Original:       original,
		JobDescription: textproc.Truncate(textproc.Normalize(jobDescription), rewriteJDLimit),
	}
	if resumeContext != "" {
		data.Context = textproc.Truncate(textproc.Normalize(resumeContext), rewriteContextLimit)
	}

	prompt, err := ai.BuildPrompt(config.OperationRewrite, r.prompts, data)
	if err == nil {
		var text string
		text, _, err = r.generator.Generate(ctx, prompt)
		if err == nil {
			result.Revised, result.Rationale = ParseRewrite(original, text)
			return result
		}
	}

	r.logger.LogError(err, "Bullet rewrite failed", "bullet_length", len(original))
	result.Rationale = textproc.Truncate(fmt.Sprintf("%s%v", RewriteErrorPrefix, err), maxRationaleLength)
	return result
}
