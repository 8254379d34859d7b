package analysis

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/embedding"
	"resumatch/internal/errors"
	"resumatch/internal/textproc"
	"resumatch/internal/types"
	"resumatch/internal/vocabulary"
)

// DefaultBatchConcurrency bounds parallel rewrites in one batch
const DefaultBatchConcurrency = 4

// Score bands
const (
	BandStrong    = "Strong alignment"
	BandGood      = "Good, but can improve"
	BandNeedsWork = "Needs major tailoring"
)

// Limits caps the size of analysis results
type Limits struct {
	MaxBullets       int
	MaxGaps          int
	MaxEvidence      int
	BatchConcurrency int
}

// DefaultLimits returns the built-in limits
func DefaultLimits() Limits {
	return Limits{
		MaxBullets:       textproc.DefaultMaxBullets,
		MaxGaps:          DefaultMaxGaps,
		MaxEvidence:      DefaultMaxEvidence,
		BatchConcurrency: DefaultBatchConcurrency,
	}
}

// LimitsFromConfig reads limits from the analysis section, keeping defaults for unset values
func LimitsFromConfig(cfg config.AnalysisConfig) Limits {
	limits := DefaultLimits()
	if cfg.MaxBullets > 0 {
		limits.MaxBullets = cfg.MaxBullets
	}
	if cfg.MaxGaps > 0 {
		limits.MaxGaps = cfg.MaxGaps
	}
	if cfg.MaxEvidence > 0 {
		limits.MaxEvidence = cfg.MaxEvidence
	}
	if cfg.BatchConcurrency > 0 {
		limits.BatchConcurrency = cfg.BatchConcurrency
	}
	return limits
}

// Options wires the analyzer's collaborators. Generators may be nil, which
// selects keyword gaps and pass-through rewrites.
type Options struct {
	Scorer           *embedding.Scorer
	GapGenerator     ai.Generator
	RewriteGenerator ai.Generator
	Vocabulary       vocabulary.Provider
	GapPrompts       config.PromptConfig
	RewritePrompts   config.PromptConfig
	Limits           Limits
	Logger           *errors.Logger
}

// Analyzer runs the full matching pipeline
type Analyzer struct {
	scorer   *embedding.Scorer
	gaps     *GapAnalyzer
	evidence *EvidenceLinker
	rewriter *BulletRewriter
	limits   Limits
	logger   *errors.Logger
	newID    func() string
}

// NewAnalyzer builds an analyzer from opts
func NewAnalyzer(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	limits := opts.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	if limits.BatchConcurrency <= 0 {
		limits.BatchConcurrency = DefaultBatchConcurrency
	}

	return &Analyzer{
		scorer:   opts.Scorer,
		gaps:     NewGapAnalyzer(opts.GapGenerator, vocab, opts.GapPrompts, logger),
		evidence: NewEvidenceLinker(vocab),
		rewriter: NewBulletRewriter(opts.RewriteGenerator, opts.RewritePrompts, logger),
		limits:   limits,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Analyze validates the input and runs scoring, gap analysis, evidence
// linking and bullet extraction in parallel. Only scoring can fail the call.
func (a *Analyzer) Analyze(ctx context.Context, input types.AnalyzeInput) (*types.AnalyzeOutput, error) {
	if err := ValidateAnalyzeInput(input); err != nil {
		return nil, err
	}
	if !a.scorer.Available() {
		return nil, errors.NewBackendUnavailableError(errors.ErrCodeBackendNotSet,
			"match scoring needs an embedding backend; set GEMINI_API_KEY", nil)
	}

	output := &types.AnalyzeOutput{ID: a.newID()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := a.scorer.Score(gctx, input.ResumeText, input.JobDescription)
		if err != nil {
			return err
		}
		output.Score = score
		return nil
	})
	g.Go(func() error {
		output.Gaps, output.GapSource = a.gaps.AnalyzeGaps(gctx, input.ResumeText, input.JobDescription, a.limits.MaxGaps)
		return nil
	})
	g.Go(func() error {
		output.Evidence = a.evidence.ExtractEvidence(input.ResumeText, input.JobDescription, a.limits.MaxEvidence)
		return nil
	})
	g.Go(func() error {
		output.Bullets = textproc.ExtractBullets(input.ResumeText, a.limits.MaxBullets)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.LogError(err, "Analysis failed", "analysis_id", output.ID)
		return nil, err
	}

	output.ScoreBand = ScoreBand(output.Score)

	a.logger.Info("Analysis completed",
		"analysis_id", output.ID,
		"score", output.Score,
		"gaps", len(output.Gaps),
		"gap_source", string(output.GapSource),
		"evidence", len(output.Evidence),
		"bullets", len(output.Bullets))

	return output, nil
}

// Rewrite validates and rewrites one bullet
func (a *Analyzer) Rewrite(ctx context.Context, input types.RewriteInput) (*types.RewriteOutput, error) {
	if err := ValidateRewriteInput(input); err != nil {
		return nil, err
	}
	result := a.rewriter.RewriteBullet(ctx, input.Original, input.JobDescription, input.Context)
	return &result, nil
}

// RewriteBatch rewrites every usable bullet against the same job description
// with bounded concurrency. Results keep input order; blank and too-short
// bullets are skipped.
func (a *Analyzer) RewriteBatch(ctx context.Context, input types.BatchRewriteInput) (*types.BatchRewriteOutput, error) {
	if err := ValidateBatchRewriteInput(input); err != nil {
		return nil, err
	}

	bullets := usableBullets(input.Bullets)
	results := make([]types.RewriteOutput, len(bullets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limits.BatchConcurrency)
	for i, bullet := range bullets {
		g.Go(func() error {
			results[i] = a.rewriter.RewriteBullet(gctx, bullet, input.JobDescription, input.Context)
			return nil
		})
	}
	_ = g.Wait()

	return &types.BatchRewriteOutput{Results: results}, nil
}

// ExtractBullets returns the bullets found in resume text using the configured limit
func (a *Analyzer) ExtractBullets(text string) *types.BulletList {
	return &types.BulletList{Bullets: textproc.ExtractBullets(text, a.limits.MaxBullets)}
}

// Scorer exposes the scorer for health reporting
func (a *Analyzer) Scorer() *embedding.Scorer {
	return a.scorer
}

// ScoreBand labels a match score
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandGood
	default:
		return BandNeedsWork
	}
}
