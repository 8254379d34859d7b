package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumatch/internal/errors"
	"resumatch/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	defaultLimiterIdle = 10 * time.Minute
	globalLimiterKey   = "global"
)

// RateLimiter hands out one token bucket per key and evicts buckets that
// have been idle for longer than the idle window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	logger  *errors.Logger

	done      chan struct{}
	closeOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMin per key with the given burst. idle
// defaults to 10 minutes and also sets the eviction interval.
func NewRateLimiter(requestsPerMin int, idle time.Duration, burst int, logger *errors.Logger) *RateLimiter {
	if idle <= 0 {
		idle = defaultLimiterIdle
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   max(burst, 1),
		idle:    idle,
		now:     time.Now,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Allow reports whether a request for key may proceed. It never blocks.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = rl.now()
	rl.mu.Unlock()

	return b.limiter.Allow()
}

// GetStats reports the limiter settings and the number of live buckets
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.buckets),
		"rate_per_minute": float64(rl.limit) * 60.0,
		"burst_capacity":  rl.burst,
		"idle_eviction":   rl.idle.String(),
	}
}

// Close stops eviction. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops buckets not seen within the idle window
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idle)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
	rl.logger.Debug("Evicted idle rate limiters", "remaining", len(rl.buckets))
}

// createRateLimitMiddleware rejects requests over the limit with 429 and
// counts each rejection
func (s *Server) createRateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	om := s.Deps.Observability

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r, s.RateLimit.ByIP)
			if s.RateLimiter.Allow(key) {
				next(w, r)
				return
			}

			s.Logger.Info("Rate limit exceeded", "key", key, "endpoint", r.URL.Path)
			om.GetMetrics().RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, true, om,
				attribute.String("endpoint", r.URL.Path),
				attribute.String("method", r.Method))
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
		}
	}
}

func rateLimitKey(r *http.Request, byIP bool) string {
	if !byIP {
		return globalLimiterKey
	}
	return "ip:" + clientIP(r)
}

// clientIP prefers the first valid X-Forwarded-For entry, then X-Real-IP,
// then the connection address
func clientIP(r *http.Request) string {
	for candidate := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(candidate); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
