package embedding

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

// letterEmbedder embeds text as its a-z letter histogram and counts calls per input.
type letterEmbedder struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	gate  chan struct{}
}

func newLetterEmbedder() *letterEmbedder {
	return &letterEmbedder{calls: make(map[string]int)}
}

func (f *letterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls[text]++
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

func (f *letterEmbedder) callsFor(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[text]
}

func (f *letterEmbedder) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func TestCacheMemoizes(t *testing.T) {
	backend := newLetterEmbedder()
	cache, err := NewCache(backend, 10)
	require.NoError(t, err)

	first, err := cache.Embed(context.Background(), "golang developer")
	require.NoError(t, err)
	second, err := cache.Embed(context.Background(), "golang developer")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.callsFor("golang developer"))

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 10, stats.Capacity)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	backend := newLetterEmbedder()
	cache, err := NewCache(backend, 2)
	require.NoError(t, err)
	ctx := context.Background()

	for _, text := range []string{"alpha", "beta", "alpha", "gamma", "alpha", "beta"} {
		_, err := cache.Embed(ctx, text)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, backend.callsFor("alpha"), "alpha stays hot")
	assert.Equal(t, 2, backend.callsFor("beta"), "beta was evicted by gamma")
	assert.Equal(t, 2, cache.Stats().Size)
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	backend := newLetterEmbedder()
	backend.err = stderrors.New("quota exceeded")
	cache, err := NewCache(backend, 4)
	require.NoError(t, err)

	_, err = cache.Embed(context.Background(), "resume")
	require.Error(t, err)

	backend.err = nil
	_, err = cache.Embed(context.Background(), "resume")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.callsFor("resume"))
}

func TestCacheConcurrentMissesShareOneCall(t *testing.T) {
	backend := newLetterEmbedder()
	backend.gate = make(chan struct{})
	cache, err := NewCache(backend, 4)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var failures atomic.Int32
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Embed(context.Background(), "shared key"); err != nil {
				failures.Add(1)
			}
		}()
	}

	require.Eventually(t, func() bool { return backend.callsFor("shared key") == 1 },
		time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(backend.gate)
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, 1, backend.totalCalls())
}

func TestCacheSharedCallSurvivesFirstCallerCancel(t *testing.T) {
	backend := newLetterEmbedder()
	backend.gate = make(chan struct{})
	cache, err := NewCache(backend, 4)
	require.NoError(t, err)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Embed(firstCtx, "shared key")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return backend.callsFor("shared key") == 1 },
		time.Second, time.Millisecond)

	type result struct {
		vector []float32
		err    error
	}
	second := make(chan result, 1)
	go func() {
		vector, err := cache.Embed(context.Background(), "shared key")
		second <- result{vector, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting on the shared call")
	}

	close(backend.gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.vector, 26)
	assert.Equal(t, 1, backend.totalCalls())
}

func TestCacheReturnsCopies(t *testing.T) {
	cache, err := NewCache(newLetterEmbedder(), 4)
	require.NoError(t, err)

	first, err := cache.Embed(context.Background(), "abc")
	require.NoError(t, err)
	first[0] = 99

	second, err := cache.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float32(1), second[0])
}

func TestCacheOnLookup(t *testing.T) {
	cache, err := NewCache(newLetterEmbedder(), 4)
	require.NoError(t, err)

	var hits, misses int
	cache.OnLookup(func(_ context.Context, hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	for range 3 {
		_, err := cache.Embed(context.Background(), "same")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestNewCacheRejectsBadCapacity(t *testing.T) {
	_, err := NewCache(newLetterEmbedder(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewCache(nil, 10)
	require.Error(t, err)
}

func TestScoreBoundsAndSymmetry(t *testing.T) {
	cache, err := NewCache(newLetterEmbedder(), DefaultCacheCapacity)
	require.NoError(t, err)
	scorer := NewScorer(cache)
	ctx := context.Background()

	pairs := [][2]string{
		{"Python developer with Django", "Looking for a Python engineer"},
		{"aaaa", "zzzz"},
		{"Kubernetes and Docker", "Kubernetes and Docker"},
		{"", "something"},
	}
	for _, p := range pairs {
		ab, err := scorer.Score(ctx, p[0], p[1])
		require.NoError(t, err)
		ba, err := scorer.Score(ctx, p[1], p[0])
		require.NoError(t, err)

		assert.GreaterOrEqual(t, ab, 0)
		assert.LessOrEqual(t, ab, 100)
		assert.Equal(t, ab, ba, "score must be symmetric for %q", p)
	}

	same, err := scorer.Score(ctx, "Kubernetes and Docker", "  Kubernetes\n and   Docker ")
	require.NoError(t, err)
	assert.Equal(t, 100, same)

	disjoint, err := scorer.Score(ctx, "aaaa", "zzzz")
	require.NoError(t, err)
	assert.Equal(t, 0, disjoint)
}

func TestScoreUsesNormalizedCacheKeys(t *testing.T) {
	backend := newLetterEmbedder()
	cache, err := NewCache(backend, 10)
	require.NoError(t, err)
	scorer := NewScorer(cache)

	_, err = scorer.Score(context.Background(), "Go  developer\n", "Backend\tengineer")
	require.NoError(t, err)
	_, err = scorer.Score(context.Background(), " Go developer", "Backend engineer ")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.callsFor("Go developer"))
	assert.Equal(t, 1, backend.callsFor("Backend engineer"))
}

func TestScoreErrors(t *testing.T) {
	t.Run("no backend", func(t *testing.T) {
		_, err := NewScorer(nil).Score(context.Background(), "resume text", "job text")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeBackendUnavailable))
	})

	t.Run("backend failure is a hard error", func(t *testing.T) {
		backend := newLetterEmbedder()
		backend.err = errors.NewBackendTransientError(errors.ErrCodeAITimeout, "timed out", nil)
		_, err := NewScorer(backend).Score(context.Background(), "resume text", "job text")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeBackendTransient))
	})
}

func TestCosine(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	sim, err = Cosine([]float32{1, 2, 3}, []float32{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = Cosine([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, sim)

	_, err = Cosine([]float32{1}, []float32{1, 2})
	require.Error(t, err)
}

func TestScoreFromSimilarity(t *testing.T) {
	tests := []struct {
		sim  float64
		want int
	}{
		{-0.4, 0},
		{0, 0},
		{0.444, 44},
		{0.446, 45},
		{0.999, 100},
		{1.2, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreFromSimilarity(tt.sim), "similarity %v", tt.sim)
	}
}

func TestNewEmbedderWithoutKey(t *testing.T) {
	cfg := &config.OperationAIConfig{Provider: "gemini", Model: config.DefaultEmbeddingModel}
	embedder, err := NewEmbedder(cfg, errors.NewDiscardLogger())
	require.Error(t, err)
	assert.Nil(t, embedder)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBackendUnavailable))
}
