package ai

import (
	"context"
)

// Prompt is one generation request. System is optional.
type Prompt struct {
	Operation string
	System    string
	User      string
}

// Generator produces free text for a prompt. Implementations must be safe
// for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error)
}

// HealthReporter is implemented by backends that can describe their own state
type HealthReporter interface {
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
