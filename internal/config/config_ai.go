package config

// Operation names shared by configuration, circuit breakers and metrics.
const (
	OperationGapAnalysis = "gap_analysis"
	OperationRewrite     = "rewrite"
	OperationEmbedding   = "embedding"
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetGapAnalysisConfig returns the AI configuration for gap analysis with fallback to global config
func (c *Config) GetGapAnalysisConfig() OperationAIConfig {
	config := c.AI.GapAnalysis
	c.applyOperationDefaults(&config)
	return config
}

// GetRewriteConfig returns the AI configuration for bullet rewrites with fallback to global config
func (c *Config) GetRewriteConfig() OperationAIConfig {
	config := c.AI.Rewrite
	c.applyOperationDefaults(&config)
	return config
}

// GetEmbeddingConfig returns the AI configuration for embeddings with fallback to global config.
// The embedding model never inherits the generation model.
func (c *Config) GetEmbeddingConfig() OperationAIConfig {
	config := c.AI.Embedding
	if config.Model == "" {
		config.Model = DefaultEmbeddingModel
	}
	c.applyOperationDefaults(&config)
	return config
}

// HasAPIKey reports whether the given operation has credentials to reach its backend
func (o OperationAIConfig) HasAPIKey() bool {
	return o.APIKey != ""
}
