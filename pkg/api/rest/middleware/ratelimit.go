package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration for the HTTP edge, the
// layer in front of namespace resolution. It complements, but does not
// replace, each tenant's own quota.RateLimitQPS: this limiter protects the
// server from a single client before its request has even been decoded into
// a namespace; the tenant's quota protects one namespace from another.
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerSec float64 // Requests per second
	Burst          int     // Maximum burst size
	PerIP          bool    // Rate limit per IP address
	PerUser        bool    // Rate limit per authenticated user (and namespace, if the token is scoped)
	GlobalLimit    bool    // Global rate limit across all clients
}

// RateLimiter manages rate limiting for clients
type RateLimiter struct {
	config   RateLimitConfig
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	global   *rate.Limiter
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}

	if config.GlobalLimit {
		rl.global = rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.Burst)
	}

	// Start cleanup goroutine to prevent memory leaks
	go rl.cleanup()

	return rl
}

// getLimiter returns the rate limiter for a specific key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = rl.limiters[key]
	if exists {
		return limiter
	}

	// Create new limiter for this key
	limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSec), rl.config.Burst)
	rl.limiters[key] = limiter

	return limiter
}

// cleanup periodically removes inactive limiters to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		if len(rl.limiters) > 10000 {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		rl.mu.Unlock()
	}
}

// retryAfterSeconds returns how long a client should wait before its bucket
// has refilled by one token, given the configured rate.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.config.RequestsPerSec <= 0 {
		return 60
	}
	return int(math.Ceil(1 / rl.config.RequestsPerSec))
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip if rate limiting is disabled
			if !limiter.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			// Check global rate limit first
			if limiter.config.GlobalLimit && limiter.global != nil {
				if !limiter.global.Allow() {
					writeRateLimitError(w, "Global rate limit exceeded", limiter.retryAfterSeconds())
					return
				}
			}

			// Determine the rate limit key
			var key string
			if limiter.config.PerUser {
				// Try to get user claims from context (requires auth middleware).
				// A namespace-scoped token gets its own bucket per namespace, so
				// one tenant's traffic can't exhaust another's share of a shared
				// user account.
				if claims, ok := GetClaimsFromContext(r.Context()); ok {
					if claims.Namespace != "" {
						key = fmt.Sprintf("user:%s:%s", claims.UserID, claims.Namespace)
					} else {
						key = fmt.Sprintf("user:%s", claims.UserID)
					}
				} else {
					// Fall back to IP if user not authenticated
					key = getClientIP(r)
				}
			} else if limiter.config.PerIP {
				key = getClientIP(r)
			} else {
				// Default to IP-based rate limiting
				key = getClientIP(r)
			}

			// Check per-client rate limit
			clientLimiter := limiter.getLimiter(key)
			if !clientLimiter.Allow() {
				writeRateLimitError(w, fmt.Sprintf("Rate limit exceeded for %s", key), limiter.retryAfterSeconds())
				return
			}

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.config.Burst))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(clientLimiter.Tokens())))

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take the first IP if multiple are present
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			forwarded = forwarded[:i]
		}
		return strings.TrimSpace(forwarded)
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// writeRateLimitError writes a rate limit error response
func writeRateLimitError(w http.ResponseWriter, message string, retryAfterSeconds int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds))
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"error": "%s", "status": 429}`, message)
}
