package embedding

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"resumatch/internal/errors"
)

// DefaultCacheCapacity is the number of embeddings kept when none is configured
const DefaultCacheCapacity = 100

// CacheStats is a snapshot of cache usage
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
}

// LookupFunc is called once per Embed call with whether it was a hit
type LookupFunc func(ctx context.Context, hit bool)

// Cache memoizes embeddings by exact input string in a bounded LRU.
// Concurrent misses on the same key share one backend call.
type Cache struct {
	backend  Embedder
	capacity int

	mu    sync.Mutex
	store *lru.Cache[string, []float32]
	group singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	onLookup LookupFunc
}

var _ Embedder = (*Cache)(nil)

// NewCache wraps backend with an LRU of the given capacity
func NewCache(backend Embedder, capacity int) (*Cache, error) {
	if backend == nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError,
			"embedding cache needs a backend", nil)
	}
	store, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid embedding cache capacity %d", capacity), err)
	}
	return &Cache{backend: backend, capacity: capacity, store: store}, nil
}

// OnLookup registers a hook for hit/miss accounting. It must be set before
// the cache is shared.
func (c *Cache) OnLookup(fn LookupFunc) {
	c.onLookup = fn
}

// Embed returns a copy of the cached vector for text or computes and stores
// it. Backend errors are not cached. The shared backend call ignores the
// cancellation of whichever caller started it; each caller stops waiting when
// its own ctx ends.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := c.get(text); ok {
		c.record(ctx, true)
		return slices.Clone(vector), nil
	}
	c.record(ctx, false)

	shared := context.WithoutCancel(ctx)
	results := c.group.DoChan(text, func() (any, error) {
		if vector, ok := c.get(text); ok {
			return vector, nil
		}
		vector, err := c.backend.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.store.Add(text, vector)
		c.mu.Unlock()
		return vector, nil
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]float32)), nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

func (c *Cache) get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(text)
}

func (c *Cache) record(ctx context.Context, hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.onLookup != nil {
		c.onLookup(ctx, hit)
	}
}

// Stats returns a snapshot of hit/miss counters and occupancy
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	size := c.store.Len()
	c.mu.Unlock()

	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     size,
		Capacity: c.capacity,
	}
}
