package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flatnav/flatnav-go/pkg/api/rest/middleware"
	"github.com/flatnav/flatnav-go/pkg/observability"
	"github.com/flatnav/flatnav-go/pkg/tenant"
)

// Config holds the REST server configuration
type Config struct {
	Host           string
	Port           int
	CORSEnabled    bool
	CORSOrigins    []string
	Auth           middleware.AuthConfig
	RateLimit      middleware.RateLimitConfig
	EfConstruction int
	EfSearch       int
}

// Server represents the REST API server, talking directly to the tenant
// manager in-process: there is no RPC hop to a separate graph service.
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates a new REST API server in front of manager.
func NewServer(config Config, manager *tenant.Manager, metrics *observability.Metrics) *Server {
	handler := NewHandler(manager, metrics, config.EfConstruction, config.EfSearch)

	server := &Server{
		config:  config,
		handler: handler,
		mux:     http.NewServeMux(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.handler.HealthCheck)
	s.mux.HandleFunc("/v1/stats", s.handler.GetStats)
	s.mux.HandleFunc("/v1/stats/", s.handler.GetStats)

	s.mux.HandleFunc("/v1/vectors", s.handler.Insert)
	s.mux.HandleFunc("/v1/vectors/search", s.handler.Search)
	s.mux.HandleFunc("/v1/vectors/batch", s.handler.BatchInsert)
}

// withMiddleware wraps the handler with all middleware
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	// Each wrapper below encloses everything applied before it, so the last
	// one applied is the outermost and runs first on a request.

	// 1. Logging middleware (innermost, runs last, next to the routes)
	handler = loggingMiddleware(handler)

	// 2. CORS middleware
	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	// 3. Rate limiting
	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	// 4. Authentication (outermost, runs first, so the rate limiter can read
	// the caller's claims from the request context)
	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	observability.Infof("Starting REST API server on %s:%d", s.config.Host, s.config.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	observability.Info("Shutting down REST API server...")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		observability.Info("Access", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": duration,
		})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if origin is allowed
			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
