package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricAnalysisCompleted = "analysis_completed"
	MetricBulletRewritten   = "bullet_rewritten"
	MetricFallbackGaps      = "fallback_gaps"
	MetricRateLimitHit      = "rate_limit_hit"
)

// Metrics holds all custom metrics for resumatch.
// The zero value records nothing.
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	AnalysesCompleted metric.Int64Counter
	BulletsRewritten  metric.Int64Counter
	FallbackGaps      metric.Int64Counter
	MatchScores       metric.Int64Histogram

	// Embedding cache metrics
	EmbeddingCacheHits   metric.Int64Counter
	EmbeddingCacheMisses metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("resumatch_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("resumatch_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("resumatch_ai_errors_total",
		metric.WithDescription("Total number of AI request errors")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("resumatch_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.AnalysesCompleted, err = meter.Int64Counter("resumatch_analyses_total",
		metric.WithDescription("Total number of resume/job matches analyzed")); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}
	if m.BulletsRewritten, err = meter.Int64Counter("resumatch_bullets_rewritten_total",
		metric.WithDescription("Total number of bullet rewrites")); err != nil {
		return nil, fmt.Errorf("failed to create bullets rewritten metric: %w", err)
	}
	if m.FallbackGaps, err = meter.Int64Counter("resumatch_fallback_gap_analyses_total",
		metric.WithDescription("Gap analyses answered by keyword matching")); err != nil {
		return nil, fmt.Errorf("failed to create fallback gaps metric: %w", err)
	}
	if m.MatchScores, err = meter.Int64Histogram("resumatch_match_score",
		metric.WithDescription("Distribution of match scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 60, 80, 100)); err != nil {
		return nil, fmt.Errorf("failed to create match score metric: %w", err)
	}

	if m.EmbeddingCacheHits, err = meter.Int64Counter("resumatch_embedding_cache_hits_total",
		metric.WithDescription("Embedding lookups served from cache")); err != nil {
		return nil, fmt.Errorf("failed to create cache hits metric: %w", err)
	}
	if m.EmbeddingCacheMisses, err = meter.Int64Counter("resumatch_embedding_cache_misses_total",
		metric.WithDescription("Embedding lookups that called the backend")); err != nil {
		return nil, fmt.Errorf("failed to create cache misses metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter("resumatch_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult, om *ObservabilityManager) error {
	if m.AIProcessingTime == nil {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	ctx, span := otel.Tracer("resumatch.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	if om.customMetrics().AIOperations.Enabled {
		m.recordAIMetrics(ctx, operation, err, duration, result, om, span)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func (m *Metrics) recordAIMetrics(ctx context.Context, operation string, err error, duration float64, result *AIOperationResult, om *ObservabilityManager, span oteltrace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if om.customMetrics().AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if result != nil && result.TokenUsage != nil {
		if om.customMetrics().AIOperations.TrackTokenUsage {
			m.recordTokenMetrics(ctx, result.TokenUsage, attrs)
		}
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attrs...)
}

func (m *Metrics) recordTokenMetrics(ctx context.Context, tokenUsage *TokenUsage, attrs []attribute.KeyValue) {
	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", tokenUsage.InputTokens},
		{"output", tokenUsage.OutputTokens},
		{"total", tokenUsage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordBusinessMetric records business-specific metrics
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, om *ObservabilityManager, attributes ...attribute.KeyValue) {
	custom := om.customMetrics()

	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case MetricAnalysisCompleted:
		counter = m.AnalysesCompleted
	case MetricBulletRewritten:
		counter = m.BulletsRewritten
	case MetricFallbackGaps:
		counter = m.FallbackGaps
	case MetricRateLimitHit:
		if !custom.Infrastructure.TrackRateLimits {
			return
		}
		counter = m.RateLimitHits
	}
	if metricType != MetricRateLimitHit && !custom.BusinessMetrics.Enabled {
		return
	}

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordMatchScore records the score of a completed analysis
func (m *Metrics) RecordMatchScore(ctx context.Context, score int, om *ObservabilityManager) {
	if m.MatchScores == nil || !om.customMetrics().BusinessMetrics.TrackMatchScores {
		return
	}
	m.MatchScores.Record(ctx, int64(score))
}

// RecordCacheLookup counts an embedding cache hit or miss
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool, om *ObservabilityManager) {
	if !om.customMetrics().Infrastructure.TrackEmbeddingCache {
		return
	}
	counter := m.EmbeddingCacheMisses
	if hit {
		counter = m.EmbeddingCacheHits
	}
	if counter != nil {
		counter.Add(ctx, 1)
	}
}
