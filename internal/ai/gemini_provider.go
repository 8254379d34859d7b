package ai

import (
	"context"
	"fmt"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Generator for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operation      string
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	logger         *errors.Logger
}

var (
	_ Generator      = (*GeminiProvider)(nil)
	_ HealthReporter = (*GeminiProvider)(nil)
)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operation:      operationType,
		circuitBreaker: NewCircuitBreaker[*genai.GenerateContentResponse](operationType, cfg.CircuitBreaker, logger),
		modelBreaker:   NewModelCircuitBreaker[*genai.Model](operationType, cfg.CircuitBreaker, logger),
		logger:         logger,
	}, nil
}

// Generate sends one prompt and returns the response text
func (g *GeminiProvider) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	operation := prompt.Operation
	if operation == "" {
		operation = g.operation
	}

	tracer := otel.Tracer("resumatch.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.prompt_length", len(prompt.User)),
	)

	ctx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	genaiConfig := g.generateConfig(prompt.System)

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return WithRetry(ctx, operation, *g.config.MaxRetries, g.logger,
			func(ctx context.Context) (*genai.GenerateContentResponse, error) {
				return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt.User), genaiConfig)
			})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, ClassifyError(operation, err)
	}

	text := result.Text()
	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)

	return text, tokenUsage, nil
}

func (g *GeminiProvider) generateConfig(systemPrompt string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	return cfg
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation", g.operation,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
