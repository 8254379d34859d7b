package ai

import (
	"fmt"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

// NewGenerator builds the generative backend for one operation.
// A missing API key yields a backend_unavailable error; callers treat it as
// degraded mode rather than a startup failure.
func NewGenerator(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (Generator, error) {
	if !cfg.HasAPIKey() {
		return nil, errors.NewBackendUnavailableError(errors.ErrCodeBackendNotSet,
			fmt.Sprintf("no API key configured for %s", operationType), nil).
			WithContext("operation", operationType)
	}

	logger.Debug("Initializing AI generator",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(cfg, operationType, logger)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
