package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyAPIKeyFallback()
	c.applyObservabilityDefaults()
}

// applyAPIKeyFallback honours the conventional GEMINI_API_KEY variable, which is
// also what a project .env file usually sets
func (c *Config) applyAPIKeyFallback() {
	if c.AI.APIKey != "" {
		return
	}
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		c.AI.APIKey = key
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMATCH_AI_APIKEY",
		"RESUMATCH_AI_PROVIDER",
		"RESUMATCH_AI_MODEL",
		"RESUMATCH_SERVER_PORT",
		"RESUMATCH_SERVER_HOST",
		"RESUMATCH_APP_LOGLEVEL",
		"RESUMATCH_VAULT_ENABLED",
		"RESUMATCH_ANALYSIS_VOCABULARYFILE",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET*** (keyword fallback mode)")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Printf("[CONFIG] Embedding Cache Capacity: %d", c.Analysis.CacheCapacity)
	if c.Analysis.VocabularyFile != "" {
		log.Printf("[CONFIG] Vocabulary File: %s (watch: %t)", c.Analysis.VocabularyFile, c.Analysis.WatchVocabulary)
	}

	log.Println("[CONFIG] === Operation-Specific AI Configurations ===")
	log.Printf("[CONFIG] Gap Analysis - Provider: %s, Model: %s", c.AI.GapAnalysis.Provider, c.AI.GapAnalysis.Model)
	log.Printf("[CONFIG] Rewrite - Provider: %s, Model: %s", c.AI.Rewrite.Provider, c.AI.Rewrite.Model)
	log.Printf("[CONFIG] Embedding - Provider: %s, Model: %s", c.AI.Embedding.Provider, c.AI.Embedding.Model)

	log.Println("[CONFIG] =====================================")
}
