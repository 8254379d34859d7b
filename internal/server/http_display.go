package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayBackendInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health                - Health check and backend status")
	fmt.Println("  GET  /stats                 - Breakers, cache and rate limit statistics")
	fmt.Println("  POST /api/analyze           - Score a resume against a job description")
	fmt.Println("  POST /api/rewrite           - Rewrite one bullet")
	fmt.Println("  POST /api/rewrite/batch     - Rewrite several bullets")
	fmt.Println("  POST /api/bullets/download  - Download bullets as text")
}

// displayBackendInfo shows which AI backends are configured
func (s *Server) displayBackendInfo() {
	for _, operation := range []string{"embedding", "gapAnalysis", "rewrite"} {
		if isNilBackend(s.backends()[operation]) {
			fmt.Printf("Backend %-12s NOT CONFIGURED\n", operation+":")
			continue
		}
		fmt.Printf("Backend %-12s configured\n", operation+":")
	}
	if isNilBackend(s.Deps.Embedder) {
		fmt.Println("WARNING: /api/analyze needs an embedding backend; set GEMINI_API_KEY")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		} else {
			fmt.Println("  - One shared bucket for all clients")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
