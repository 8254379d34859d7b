package server

import (
	"time"

	"resumatch/internal/ai"
	"resumatch/internal/analysis"
	"resumatch/internal/config"
	"resumatch/internal/embedding"
	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/vocabulary"
)

// AnalyzeRequest is the body of POST /api/analyze.
// Pointer fields distinguish an absent field from an empty one.
type AnalyzeRequest struct {
	ResumeText     *string `json:"resumeText"`
	JobDescription *string `json:"jobDescription"`
}

// RewriteRequest is the body of POST /api/rewrite
type RewriteRequest struct {
	Original       *string `json:"original"`
	JobDescription string  `json:"jobDescription"`
	Context        string  `json:"context"`
}

// BatchRewriteRequest is the body of POST /api/rewrite/batch
type BatchRewriteRequest struct {
	Bullets        []string `json:"bullets"`
	JobDescription *string  `json:"jobDescription"`
	Context        string   `json:"context"`
}

// BulletsDownloadRequest is the body of POST /api/bullets/download
type BulletsDownloadRequest struct {
	Bullets []string `json:"bullets"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Dependencies are the services the HTTP handlers call into. Generators and
// the embedder may be nil when no backend is configured.
type Dependencies struct {
	Analyzer         *analysis.Analyzer
	GapGenerator     ai.Generator
	RewriteGenerator ai.Generator
	Embedder         embedding.Embedder
	Cache            *embedding.Cache
	Vocabulary       vocabulary.Provider
	Observability    *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Services
	Deps Dependencies

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumatchErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ServerConfigFrom copies the server section of the application config
func ServerConfigFrom(appCfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.Server.MaxRequestSize,
		RateLimit:      &appCfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumatchErrors.Logger) *Server {
	if logger == nil {
		logger = resumatchErrors.NewDiscardLogger()
	}
	if deps.Vocabulary == nil {
		deps.Vocabulary = vocabulary.Default()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Deps:           deps,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
