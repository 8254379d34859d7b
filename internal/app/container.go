// Package app builds the services shared by the CLI commands and the HTTP
// server from one loaded configuration.
package app

import (
	"context"
	"fmt"

	"resumatch/internal/ai"
	"resumatch/internal/analysis"
	"resumatch/internal/config"
	"resumatch/internal/document"
	"resumatch/internal/embedding"
	"resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/vocabulary"
)

// Options selects the optional parts of the container
type Options struct {
	Version string
	// Observability starts tracing and metrics exporters. CLI one-shot
	// commands leave it off.
	Observability bool
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *errors.Logger

	// Observability is nil when disabled; its methods are nil-safe
	Observability *observability.ObservabilityManager

	// AI backends, nil when no API key is configured
	GapGenerator     ai.Generator
	RewriteGenerator ai.Generator
	Embedder         embedding.Embedder
	Cache            *embedding.Cache

	Vocabulary        *vocabulary.Holder
	VocabularyWatcher *vocabulary.Watcher

	Analyzer *analysis.Analyzer
	Loader   *document.Loader
}

// NewContainer initializes every service from cfg. Missing API keys are not
// errors: the matching backend stays nil and the analyzer degrades.
func NewContainer(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts Options) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	steps := []struct {
		name string
		fn   func(context.Context, Options) error
	}{
		{"observability", c.initObservability},
		{"generators", c.initGenerators},
		{"embeddings", c.initEmbeddings},
		{"vocabulary", c.initVocabulary},
		{"documents", c.initDocuments},
	}
	for _, step := range steps {
		if err := step.fn(ctx, opts); err != nil {
			c.Close(context.Background())
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	c.Analyzer = analysis.NewAnalyzer(analysis.Options{
		Scorer:           c.scorer(),
		GapGenerator:     c.GapGenerator,
		RewriteGenerator: c.RewriteGenerator,
		Vocabulary:       c.Vocabulary,
		GapPrompts:       cfg.AI.GapAnalysis.Prompts,
		RewritePrompts:   cfg.AI.Rewrite.Prompts,
		Limits:           analysis.LimitsFromConfig(cfg.Analysis),
		Logger:           logger,
	})

	return c, nil
}

func (c *Container) initObservability(_ context.Context, opts Options) error {
	if !opts.Observability {
		return nil
	}
	om, err := observability.NewObservabilityManager(
		observability.GetObservabilityConfig(c.Config, opts.Version), c.Config)
	if err != nil {
		return err
	}
	c.Observability = om
	return nil
}

func (c *Container) initGenerators(_ context.Context, _ Options) error {
	gapCfg := c.Config.GetGapAnalysisConfig()
	gap, err := optionalBackend(ai.NewGenerator(&gapCfg, config.OperationGapAnalysis, c.Logger))
	if err != nil {
		return err
	}
	rewriteCfg := c.Config.GetRewriteConfig()
	rewrite, err := optionalBackend(ai.NewGenerator(&rewriteCfg, config.OperationRewrite, c.Logger))
	if err != nil {
		return err
	}

	if gap == nil || rewrite == nil {
		c.Logger.Warn("No API key for generation; gaps use keyword matching and rewrites pass through",
			"gap_analysis", gap != nil, "rewrite", rewrite != nil)
	}

	c.GapGenerator = ai.Instrument(gap, c.Observability)
	c.RewriteGenerator = ai.Instrument(rewrite, c.Observability)
	return nil
}

func (c *Container) initEmbeddings(_ context.Context, _ Options) error {
	embeddingCfg := c.Config.GetEmbeddingConfig()
	embedder, err := optionalBackend(embedding.NewEmbedder(&embeddingCfg, c.Logger))
	if err != nil {
		return err
	}
	if embedder == nil {
		c.Logger.Warn("No API key for embeddings; analysis is unavailable")
		return nil
	}

	capacity := c.Config.Analysis.CacheCapacity
	if capacity <= 0 {
		capacity = embedding.DefaultCacheCapacity
	}
	cache, err := embedding.NewCache(embedder, capacity)
	if err != nil {
		return err
	}
	om := c.Observability
	cache.OnLookup(func(ctx context.Context, hit bool) {
		om.GetMetrics().RecordCacheLookup(ctx, hit, om)
	})

	c.Embedder = embedder
	c.Cache = cache
	return nil
}

func (c *Container) initVocabulary(_ context.Context, _ Options) error {
	path := c.Config.Analysis.VocabularyFile
	if path == "" {
		c.Vocabulary = vocabulary.NewHolder(nil)
		return nil
	}

	set, err := vocabulary.LoadFile(path)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "cannot load vocabulary file", err).
			WithContext("file", path)
	}
	c.Vocabulary = vocabulary.NewHolder(set)
	c.Logger.Info("Loaded vocabulary", "file", path,
		"skills", len(set.Skills), "evidence", len(set.Evidence))

	if !c.Config.Analysis.WatchVocabulary {
		return nil
	}
	c.VocabularyWatcher = vocabulary.NewWatcher(path, c.Vocabulary, c.Config.Analysis.WatchDebounce,
		func(set *vocabulary.Set) {
			c.Logger.Info("Vocabulary reloaded", "skills", len(set.Skills), "evidence", len(set.Evidence))
		}, c.Logger)
	return c.VocabularyWatcher.Start()
}

func (c *Container) initDocuments(ctx context.Context, _ Options) error {
	var remote document.ObjectFetcher
	if s3Cfg := c.Config.Sources.S3; s3Cfg.Region != "" || s3Cfg.Endpoint != "" {
		fetcher, err := document.NewS3Fetcher(ctx, s3Cfg)
		if err != nil {
			return err
		}
		remote = fetcher
	}
	c.Loader = document.NewLoader(c.Config.Sources.MaxFileSize, remote, c.Logger)
	return nil
}

// scorer returns the similarity scorer over the cache, or nil without embeddings
func (c *Container) scorer() *embedding.Scorer {
	if c.Cache == nil {
		return nil
	}
	return embedding.NewScorer(c.Cache)
}

// Close stops the vocabulary watcher and flushes telemetry
func (c *Container) Close(ctx context.Context) {
	if c.VocabularyWatcher != nil {
		if err := c.VocabularyWatcher.Stop(); err != nil {
			c.Logger.LogError(err, "Failed to stop vocabulary watcher")
		}
	}
	if err := c.Observability.Shutdown(ctx); err != nil {
		c.Logger.LogError(err, "Failed to shut down observability")
	}
}

// optionalBackend turns a backend_unavailable construction error into a nil
// backend. Other errors are returned.
func optionalBackend[T any](backend T, err error) (T, error) {
	var zero T
	if errors.IsType(err, errors.ErrorTypeBackendUnavailable) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	return backend, nil
}
