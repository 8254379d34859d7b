package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimitHandler := s.createRateLimitMiddleware()
	requestLimitHandler := s.requestSizeLimitMiddleware()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("POST /api/analyze",
		rateLimitHandler(requestLimitHandler(s.createAnalyzeHandler())))
	mux.HandleFunc("POST /api/rewrite",
		rateLimitHandler(requestLimitHandler(s.createRewriteHandler())))
	mux.HandleFunc("POST /api/rewrite/batch",
		rateLimitHandler(requestLimitHandler(s.createBatchRewriteHandler())))
	mux.HandleFunc("POST /api/bullets/download",
		rateLimitHandler(requestLimitHandler(s.createBulletsDownloadHandler())))

	return mux
}

// Handler returns the routed handler wrapped with HTTP instrumentation
func (s *Server) Handler() http.Handler {
	return s.Deps.Observability.HTTPMiddleware()(s.setupRoutes())
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}
