// Package embedding turns text into vectors and scores how close a resume is
// to a job description.
package embedding

import (
	"context"
	"fmt"

	"resumatch/internal/ai"
	"resumatch/internal/config"
	"resumatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// Embedder returns a fixed-dimension vector for text. Implementations must be
// deterministic per input and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder calls the Gemini embedding endpoint
type GeminiEmbedder struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	circuitBreaker *ai.CircuitBreaker[[]float32]
	modelBreaker   *ai.CircuitBreaker[*genai.Model]
	logger         *errors.Logger
}

var (
	_ Embedder          = (*GeminiEmbedder)(nil)
	_ ai.HealthReporter = (*GeminiEmbedder)(nil)
)

// NewEmbedder builds the embedding backend. Without an API key it returns a
// backend_unavailable error and the caller runs without scoring.
func NewEmbedder(cfg *config.OperationAIConfig, logger *errors.Logger) (Embedder, error) {
	if !cfg.HasAPIKey() {
		return nil, errors.NewBackendUnavailableError(errors.ErrCodeBackendNotSet,
			"no API key configured for embeddings", nil).
			WithContext("operation", config.OperationEmbedding)
	}

	switch cfg.Provider {
	case "gemini":
		embedder, err := NewGeminiEmbedder(cfg, logger)
		if err != nil {
			return nil, err
		}
		return embedder, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported embedding provider: %s", cfg.Provider), nil)
	}
}

// NewGeminiEmbedder creates a Gemini embedding client
func NewGeminiEmbedder(cfg *config.OperationAIConfig, logger *errors.Logger) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed,
			"Failed to create Gemini client", err)
	}

	logger.Debug("Initializing embedding backend",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	return &GeminiEmbedder{
		client:         client,
		config:         cfg,
		circuitBreaker: ai.NewCircuitBreaker[[]float32](config.OperationEmbedding, cfg.CircuitBreaker, logger),
		modelBreaker:   ai.NewModelCircuitBreaker[*genai.Model](config.OperationEmbedding, cfg.CircuitBreaker, logger),
		logger:         logger,
	}, nil
}

// Embed implements Embedder
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("resumatch.embedding").Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.length", len(text)),
	)

	ctx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	vector, err := g.circuitBreaker.Execute(func() ([]float32, error) {
		return ai.WithRetry(ctx, config.OperationEmbedding, *g.config.MaxRetries, g.logger,
			func(ctx context.Context) ([]float32, error) {
				resp, err := g.client.Models.EmbedContent(ctx, g.config.Model, genai.Text(text), nil)
				if err != nil {
					return nil, err
				}
				if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
					return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed,
						"embedding response contained no values", nil)
				}
				return resp.Embeddings[0].Values, nil
			})
	})
	if err != nil {
		span.RecordError(err)
		return nil, ai.ClassifyError(config.OperationEmbedding, err)
	}

	span.SetAttributes(attribute.Int("output.dimensions", len(vector)))
	return vector, nil
}

// GetModelInfo checks that the embedding model is reachable
func (g *GeminiEmbedder) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	info := &ai.ModelInfo{Name: g.config.Model}

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(ctx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Embedding model availability check failed",
			"model", g.config.Model,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiEmbedder) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}
