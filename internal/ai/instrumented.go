package ai

import (
	"context"

	"resumatch/internal/observability"
)

// InstrumentedGenerator records request, error and token metrics around
// another Generator.
type InstrumentedGenerator struct {
	next Generator
	om   *observability.ObservabilityManager
}

// Instrument wraps gen with metrics. A nil gen stays nil so degraded mode
// is preserved.
func Instrument(gen Generator, om *observability.ObservabilityManager) Generator {
	if gen == nil {
		return nil
	}
	return &InstrumentedGenerator{next: gen, om: om}
}

// Generate implements Generator
func (g *InstrumentedGenerator) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	var text string
	var usage *TokenUsage

	err := g.om.GetMetrics().TrackAIOperationWithTokens(ctx, prompt.Operation, func(ctx context.Context) *observability.AIOperationResult {
		var err error
		text, usage, err = g.next.Generate(ctx, prompt)
		result := &observability.AIOperationResult{Error: err}
		if usage != nil {
			result.TokenUsage = &observability.TokenUsage{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			}
		}
		return result
	}, g.om)

	return text, usage, err
}

// GetModelInfo forwards to the wrapped generator when it reports health
func (g *InstrumentedGenerator) GetModelInfo(ctx context.Context) *ModelInfo {
	if hr, ok := g.next.(HealthReporter); ok {
		return hr.GetModelInfo(ctx)
	}
	return nil
}

// GetCircuitBreakerStats forwards to the wrapped generator when it reports health
func (g *InstrumentedGenerator) GetCircuitBreakerStats() map[string]any {
	if hr, ok := g.next.(HealthReporter); ok {
		return hr.GetCircuitBreakerStats()
	}
	return nil
}
