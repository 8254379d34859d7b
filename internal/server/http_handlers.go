package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"mime"
	"net/http"
	"slices"
	"strings"
	"time"

	"resumatch/internal/ai"
	"resumatch/internal/embedding"
	resumatchErrors "resumatch/internal/errors"
)

const defaultHealthCheckTimeout = 10 * time.Second

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig != nil && s.AppConfig.Observability.HealthCheck.Timeout > 0 {
		return s.AppConfig.Observability.HealthCheck.Timeout
	}
	return defaultHealthCheckTimeout
}

// backends lists the optional AI backends by operation
func (s *Server) backends() map[string]any {
	return map[string]any{
		"gapAnalysis": s.Deps.GapGenerator,
		"rewrite":     s.Deps.RewriteGenerator,
		"embedding":   s.Deps.Embedder,
	}
}

// healthHandler reports which backends are configured and whether their
// models answer. A missing backend degrades the service rather than failing
// it, except for embeddings which scoring cannot do without.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumatch",
		"version": s.Version,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
	defer cancel()

	aiStatus := s.checkAIModelsHealth(ctx)
	response["ai_models"] = aiStatus

	configured := make(map[string]bool, len(aiStatus))
	for operation, status := range aiStatus {
		configured[operation] = status.Configured
	}
	response["configured"] = configured

	statusCode := http.StatusOK
	switch {
	case !configured["embedding"]:
		response["status"] = "degraded"
		statusCode = http.StatusServiceUnavailable
	case !configured["gapAnalysis"] || !configured["rewrite"]:
		response["status"] = "degraded"
	}
	for _, status := range aiStatus {
		if status.Configured && status.Model != nil && !status.Model.Available {
			response["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, statusCode, response)
}

// backendStatus is the health of one backend
type backendStatus struct {
	Configured bool          `json:"configured"`
	Model      *ai.ModelInfo `json:"model,omitempty"`
}

// checkAIModelsHealth asks every configured backend for its model info
func (s *Server) checkAIModelsHealth(ctx context.Context) map[string]backendStatus {
	aiStatus := make(map[string]backendStatus)
	for operation, backend := range s.backends() {
		status := backendStatus{Configured: !isNilBackend(backend)}
		if reporter, ok := backend.(ai.HealthReporter); ok && status.Configured {
			status.Model = reporter.GetModelInfo(ctx)
		}
		aiStatus[operation] = status
	}
	return aiStatus
}

// checkCircuitBreakerHealth collects breaker statistics from every configured backend
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)
	for operation, backend := range s.backends() {
		reporter, ok := backend.(ai.HealthReporter)
		if !ok || isNilBackend(backend) {
			circuitBreakerStatus[operation] = map[string]any{"configured": false}
			continue
		}
		circuitBreakerStatus[operation] = reporter.GetCircuitBreakerStats()
	}
	return circuitBreakerStatus
}

// statsHandler provides server statistics: breakers, cache usage, vocabulary
// size and rate limiting
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"circuit_breakers": s.checkCircuitBreakerHealth(),
	}

	if s.Deps.Cache != nil {
		response["embedding_cache"] = s.Deps.Cache.Stats()
	} else {
		response["embedding_cache"] = map[string]any{"enabled": false}
	}

	vocab := s.Deps.Vocabulary.Vocabulary()
	response["vocabulary"] = map[string]any{
		"skills":   len(vocab.Skills),
		"evidence": len(vocab.Evidence),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// isNilBackend reports whether an optional backend is absent, including a
// nil pointer stored in an interface
func isNilBackend(backend any) bool {
	if backend == nil {
		return true
	}
	switch b := backend.(type) {
	case *ai.InstrumentedGenerator:
		return b == nil
	case *ai.GeminiProvider:
		return b == nil
	case *embedding.GeminiEmbedder:
		return b == nil
	}
	return false
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// requireFields returns a MISSING_FIELD validation error naming the first
// absent field in alphabetical order
func requireFields(present map[string]bool) error {
	for _, field := range slices.Sorted(maps.Keys(present)) {
		if !present[field] {
			return resumatchErrors.NewValidationError(resumatchErrors.ErrCodeMissingField,
				fmt.Sprintf("%s field is required", field), nil).
				WithContext("field", field)
		}
	}
	return nil
}

// statusForError maps the error taxonomy onto HTTP status codes
func statusForError(err error) int {
	var appErr *resumatchErrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case resumatchErrors.ErrorTypeValidation:
		switch appErr.Code {
		case resumatchErrors.ErrCodeMissingField:
			return http.StatusUnprocessableEntity
		case resumatchErrors.ErrCodeFileTooLarge:
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case resumatchErrors.ErrorTypeBackendUnavailable:
		return http.StatusServiceUnavailable
	case resumatchErrors.ErrorTypeBackendTransient:
		if appErr.Code == resumatchErrors.ErrCodeAITimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError logs err and writes it with the mapped status code.
// The underlying cause is logged, never written to the client.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)

	var appErr *resumatchErrors.AppError
	if !errors.As(err, &appErr) {
		s.Logger.LogError(err, "Request failed")
		writeErrorResponse(w, http.StatusText(status), "", status)
		return
	}

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed")
	} else {
		s.Logger.Debug("Request rejected", "code", appErr.Code, "message", appErr.Message)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   strings.ReplaceAll(string(appErr.Type), "_", " "),
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
