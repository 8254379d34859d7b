package embedding

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"resumatch/internal/errors"
	"resumatch/internal/textproc"
)

// Scorer computes a 0-100 match score from the embeddings of two texts
type Scorer struct {
	embedder Embedder
}

// NewScorer creates a scorer. A nil embedder makes every Score call fail with
// backend_unavailable.
func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Available reports whether an embedding backend is configured
func (s *Scorer) Available() bool {
	return s != nil && s.embedder != nil
}

// Score normalizes both texts, embeds them and returns round(cosine*100)
// clamped to [0,100]. Embedding failures are returned as-is: there is no
// numeric fallback.
func (s *Scorer) Score(ctx context.Context, resume, jobDescription string) (int, error) {
	if !s.Available() {
		return 0, errors.NewBackendUnavailableError(errors.ErrCodeBackendNotSet,
			"embedding backend is not configured", nil)
	}

	var resumeVec, jdVec []float32
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resumeVec, err = s.embedder.Embed(ctx, textproc.Normalize(resume))
		return err
	})
	g.Go(func() error {
		var err error
		jdVec, err = s.embedder.Embed(ctx, textproc.Normalize(jobDescription))
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	similarity, err := Cosine(resumeVec, jdVec)
	if err != nil {
		return 0, err
	}
	return ScoreFromSimilarity(similarity), nil
}

// Cosine returns the cosine similarity of a and b. Zero vectors have
// similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.NewInternalError(errors.ErrCodeEmbeddingFailed,
			"embedding dimensions differ", nil).
			WithContext("left", len(a)).
			WithContext("right", len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// ScoreFromSimilarity maps a cosine similarity to an integer in [0,100]
func ScoreFromSimilarity(similarity float64) int {
	score := int(math.Round(similarity * 100))
	return max(0, min(100, score))
}
