package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultGenerationModel is used for gap analysis and rewrites.
	DefaultGenerationModel = "gemini-2.5-flash"
	// DefaultEmbeddingModel is pinned so cached vectors stay comparable.
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultMaxFileSize is the largest accepted input document.
	DefaultMaxFileSize = 16 * 1024 * 1024
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", DefaultGenerationModel)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Gap analysis: a list of findings, keep it steady
	v.SetDefault("ai.gapAnalysis.provider", "gemini")
	v.SetDefault("ai.gapAnalysis.model", "")
	v.SetDefault("ai.gapAnalysis.timeout", 60*time.Second)
	v.SetDefault("ai.gapAnalysis.apiKey", "")
	v.SetDefault("ai.gapAnalysis.maxRetries", 2)
	v.SetDefault("ai.gapAnalysis.temperature", 0.2)
	v.SetDefault("ai.gapAnalysis.useSystemPrompts", true)

	// Rewrite: short creative output
	v.SetDefault("ai.rewrite.provider", "gemini")
	v.SetDefault("ai.rewrite.model", "")
	v.SetDefault("ai.rewrite.timeout", 30*time.Second)
	v.SetDefault("ai.rewrite.apiKey", "")
	v.SetDefault("ai.rewrite.maxRetries", 2)
	v.SetDefault("ai.rewrite.temperature", 0.5)
	v.SetDefault("ai.rewrite.useSystemPrompts", true)

	// Embedding
	v.SetDefault("ai.embedding.provider", "gemini")
	v.SetDefault("ai.embedding.model", DefaultEmbeddingModel)
	v.SetDefault("ai.embedding.timeout", 20*time.Second)
	v.SetDefault("ai.embedding.apiKey", "")
	v.SetDefault("ai.embedding.maxRetries", 3)

	for _, op := range []string{"gapAnalysis", "rewrite", "embedding"} {
		prefix := "ai." + op + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	// Analysis pipeline
	v.SetDefault("analysis.maxBullets", 15)
	v.SetDefault("analysis.maxGaps", 10)
	v.SetDefault("analysis.maxEvidence", 10)
	v.SetDefault("analysis.cacheCapacity", 100)
	v.SetDefault("analysis.batchConcurrency", 4)
	v.SetDefault("analysis.vocabularyFile", "")
	v.SetDefault("analysis.watchVocabulary", false)
	v.SetDefault("analysis.watchDebounce", time.Second)

	// Input sources
	v.SetDefault("sources.maxFileSize", DefaultMaxFileSize)
	v.SetDefault("sources.s3.region", "")
	v.SetDefault("sources.s3.endpoint", "")
	v.SetDefault("sources.s3.accessKey", "")
	v.SetDefault("sources.s3.secretKey", "")
	v.SetDefault("sources.s3.usePathStyle", false)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // analysis waits on model calls
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1024*1024)
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.s3Credentials", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumatch")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackMatchScores", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackEmbeddingCache", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
