package observability

import (
	"resumatch/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "resumatch",
			ServiceVersion: version,
			Enabled:        false,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obsConfig := cfg.Observability

	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obsConfig.SampleRate
	if obsConfig.Tracing.SampleRate > 0 {
		sampleRate = obsConfig.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:    obsConfig.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obsConfig.Enabled,
		ConsoleOutput:  obsConfig.ConsoleOutput || obsConfig.Console.Enabled,
		PrettyPrint:    obsConfig.Console.PrettyPrint,
		SampleRate:     sampleRate,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}

// customMetrics returns the fine-grained metric switches. Without a loaded
// configuration every metric is recorded.
func (om *ObservabilityManager) customMetrics() config.CustomMetricsConfig {
	if om != nil && om.fullConfig != nil {
		return om.fullConfig.Observability.CustomMetrics
	}
	return config.CustomMetricsConfig{
		AIOperations: config.AIOperationsMetricsConfig{
			Enabled:         true,
			TrackDuration:   true,
			TrackTokenUsage: true,
			TrackModelInfo:  true,
		},
		BusinessMetrics: config.BusinessMetricsConfig{
			Enabled:           true,
			TrackSuccessRates: true,
			TrackContentSizes: true,
			TrackMatchScores:  true,
		},
		Infrastructure: config.InfrastructureMetricsConfig{
			Enabled:             true,
			TrackRateLimits:     true,
			TrackEmbeddingCache: true,
		},
	}
}
