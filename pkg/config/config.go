package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig
	FlatNav FlatNavConfig
	Cache   CacheConfig
	API     APIConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// FlatNavConfig holds the graph-index configuration shared by every
// namespace a tenant.Manager creates.
type FlatNavConfig struct {
	MaxNbrs        int // out-degree cap per node (default: 16)
	Dim            int // vector dimensionality (default: 768)
	Capacity       int // preallocation hint, nodes (default: 10000)
	EfConstruction int // beam width at insert (default: 200)
	EfSearch       int // beam width at query (default: 50)
	GOrderWindow   int // G-order reordering window (default: 2*MaxNbrs)
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	Enabled  bool          // Enable query caching
	Capacity int           // Max cache entries
	TTL      time.Duration // Time to live for cache entries
}

// APIConfig holds HTTP-surface concerns that sit in front of the graph:
// auth, rate limiting, and CORS.
type APIConfig struct {
	AuthEnabled      bool
	JWTSecret        string
	PublicPaths      []string
	AdminPaths       []string
	CORSEnabled      bool
	CORSOrigins      []string
	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
	RateLimitPerIP   bool
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		FlatNav: FlatNavConfig{
			MaxNbrs:        16,
			Dim:            768,
			Capacity:       10000,
			EfConstruction: 200,
			EfSearch:       50,
			GOrderWindow:   32,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		API: APIConfig{
			AuthEnabled:      false,
			PublicPaths:      []string{"/v1/health"},
			CORSEnabled:      true,
			CORSOrigins:      []string{"*"},
			RateLimitEnabled: false,
			RateLimitPerSec:  100,
			RateLimitBurst:   200,
			RateLimitPerIP:   true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("FLATNAV_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("FLATNAV_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("FLATNAV_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("FLATNAV_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("FLATNAV_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("FLATNAV_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("FLATNAV_TLS_KEY")
	}

	// FlatNav graph configuration
	if m := os.Getenv("FLATNAV_MAX_NBRS"); m != "" {
		if mVal, err := strconv.Atoi(m); err == nil {
			cfg.FlatNav.MaxNbrs = mVal
		}
	}
	if ef := os.Getenv("FLATNAV_EF_CONSTRUCTION"); ef != "" {
		if efVal, err := strconv.Atoi(ef); err == nil {
			cfg.FlatNav.EfConstruction = efVal
		}
	}
	if ef := os.Getenv("FLATNAV_EF_SEARCH"); ef != "" {
		if efVal, err := strconv.Atoi(ef); err == nil {
			cfg.FlatNav.EfSearch = efVal
		}
	}
	if dims := os.Getenv("FLATNAV_DIM"); dims != "" {
		if d, err := strconv.Atoi(dims); err == nil {
			cfg.FlatNav.Dim = d
		}
	}
	if w := os.Getenv("FLATNAV_GORDER_WINDOW"); w != "" {
		if wVal, err := strconv.Atoi(w); err == nil {
			cfg.FlatNav.GOrderWindow = wVal
		}
	}

	// Cache configuration
	if cacheEnabled := os.Getenv("FLATNAV_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("FLATNAV_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("FLATNAV_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	// API surface configuration
	if auth := os.Getenv("FLATNAV_AUTH_ENABLED"); auth == "true" {
		cfg.API.AuthEnabled = true
		cfg.API.JWTSecret = os.Getenv("FLATNAV_JWT_SECRET")
	}
	if rl := os.Getenv("FLATNAV_RATE_LIMIT_ENABLED"); rl == "true" {
		cfg.API.RateLimitEnabled = true
	}
	if rps := os.Getenv("FLATNAV_RATE_LIMIT_PER_SEC"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.API.RateLimitPerSec = v
		}
	}
	if burst := os.Getenv("FLATNAV_RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.API.RateLimitBurst = v
		}
	}
	if cors := os.Getenv("FLATNAV_CORS_ENABLED"); cors == "false" {
		cfg.API.CORSEnabled = false
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	// FlatNav validation
	if c.FlatNav.MaxNbrs < 2 || c.FlatNav.MaxNbrs > 256 {
		return fmt.Errorf("invalid max_nbrs: %d (recommended: 10-64)", c.FlatNav.MaxNbrs)
	}
	if c.FlatNav.EfConstruction < 1 {
		return fmt.Errorf("invalid ef_construction: %d (must be >= 1)", c.FlatNav.EfConstruction)
	}
	if c.FlatNav.EfSearch < 1 {
		return fmt.Errorf("invalid ef_search: %d (must be >= 1)", c.FlatNav.EfSearch)
	}
	if c.FlatNav.Dim < 1 {
		return fmt.Errorf("invalid dim: %d (must be > 0)", c.FlatNav.Dim)
	}
	if c.FlatNav.GOrderWindow < 0 {
		return fmt.Errorf("invalid gorder window: %d (must be >= 0)", c.FlatNav.GOrderWindow)
	}

	// Cache validation
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	return nil
}

// Address returns the server address (host:port)
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
