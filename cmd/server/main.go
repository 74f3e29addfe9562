package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flatnav/flatnav-go/pkg/api/rest"
	"github.com/flatnav/flatnav-go/pkg/api/rest/middleware"
	"github.com/flatnav/flatnav-go/pkg/config"
	"github.com/flatnav/flatnav-go/pkg/observability"
	"github.com/flatnav/flatnav-go/pkg/tenant"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	// Parse command-line flags
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		configFile  = flag.String("config", "", "path to configuration file (optional)")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("flatnav server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// Show help
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	// Print banner
	printBanner()

	// Load configuration
	cfg := loadConfig(*configFile)

	// Override with command-line flags
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	observability.Info("Initializing flatnav server...")

	manager := tenant.NewManager(cfg.FlatNav.MaxNbrs, cfg.FlatNav.Dim, cfg.FlatNav.Capacity, tenant.CacheConfig{
		Enabled:  cfg.Cache.Enabled,
		Capacity: cfg.Cache.Capacity,
		TTL:      cfg.Cache.TTL,
	})
	metrics := observability.NewMetrics()

	server := rest.NewServer(rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: cfg.API.CORSEnabled,
		CORSOrigins: cfg.API.CORSOrigins,
		Auth: middleware.AuthConfig{
			Enabled:     cfg.API.AuthEnabled,
			JWTSecret:   cfg.API.JWTSecret,
			PublicPaths: cfg.API.PublicPaths,
			AdminPaths:  cfg.API.AdminPaths,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        cfg.API.RateLimitEnabled,
			RequestsPerSec: cfg.API.RateLimitPerSec,
			Burst:          cfg.API.RateLimitBurst,
			PerIP:          cfg.API.RateLimitPerIP,
		},
		EfConstruction: cfg.FlatNav.EfConstruction,
		EfSearch:       cfg.FlatNav.EfSearch,
	}, manager, metrics)

	// Print startup info
	printStartupInfo(cfg)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("REST server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	observability.Info("Server is ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		observability.Infof("Received signal: %v", sig)
	case err := <-errChan:
		observability.Errorf("Server error: %v", err)
	}

	observability.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		observability.Errorf("Error stopping REST server: %v", err)
	}

	observability.Info("Server stopped. Goodbye!")
}

func loadConfig(configFile string) *config.Config {
	// TODO: support loading from YAML/JSON config file
	if configFile != "" {
		log.Printf("Warning: config file support not yet implemented, using environment variables")
	}

	return config.LoadFromEnv()
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   _______       _   _   _             ║
║  |  ___| | __ _| |_| \ | | __ ___   __                    ║
║  | |_  | |/ _` + "`" + ` | __|  \| |/ _` + "`" + ` \ \ / /                    ║
║  |  _| | | (_| | |_| |\  | (_| |\ V /                     ║
║  |_|   |_|\__,_|\__|_| \_|\__,_| \_/                      ║
║                                                           ║
║   Flat navigable small-world graph, single process.       ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            Server Configuration                        ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.API.AuthEnabled)
	fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.API.CORSEnabled)
	fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.API.RateLimitEnabled)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            FlatNav Graph Configuration                 ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ MaxNbrs:          %-35d ║\n", cfg.FlatNav.MaxNbrs)
	fmt.Printf("║ EfConstruction:   %-35d ║\n", cfg.FlatNav.EfConstruction)
	fmt.Printf("║ EfSearch:         %-35d ║\n", cfg.FlatNav.EfSearch)
	fmt.Printf("║ Dimensions:       %-35d ║\n", cfg.FlatNav.Dim)
	fmt.Printf("║ GOrderWindow:     %-35d ║\n", cfg.FlatNav.GOrderWindow)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Cache Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.Cache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("flatnav server - in-memory approximate nearest-neighbor graph service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flatnav-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -config PATH      Accepted but not read; configuration comes from environment variables")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FLATNAV_HOST                Server host")
	fmt.Println("  FLATNAV_PORT                Server port")
	fmt.Println("  FLATNAV_MAX_CONNECTIONS     Max concurrent connections (validated, not enforced)")
	fmt.Println("  FLATNAV_REQUEST_TIMEOUT     Request timeout (parsed, not applied; HTTP timeouts are fixed)")
	fmt.Println("  FLATNAV_ENABLE_TLS          TLS flag (validated, but the server listens on plain HTTP)")
	fmt.Println("  FLATNAV_TLS_CERT            TLS certificate file")
	fmt.Println("  FLATNAV_TLS_KEY             TLS key file")
	fmt.Println("  FLATNAV_MAX_NBRS            Out-degree cap per node")
	fmt.Println("  FLATNAV_EF_CONSTRUCTION     Beam width at insert")
	fmt.Println("  FLATNAV_EF_SEARCH           Beam width at query")
	fmt.Println("  FLATNAV_DIM                 Vector dimensionality")
	fmt.Println("  FLATNAV_GORDER_WINDOW       G-order reordering window")
	fmt.Println("  FLATNAV_CACHE_ENABLED       Enable query cache (true/false)")
	fmt.Println("  FLATNAV_CACHE_CAPACITY      Cache capacity")
	fmt.Println("  FLATNAV_CACHE_TTL           Cache TTL (e.g., 5m)")
	fmt.Println("  FLATNAV_AUTH_ENABLED        Enable JWT auth (true/false)")
	fmt.Println("  FLATNAV_JWT_SECRET          JWT signing secret")
	fmt.Println("  FLATNAV_RATE_LIMIT_ENABLED  Enable rate limiting (true/false)")
	fmt.Println("  FLATNAV_RATE_LIMIT_PER_SEC  Requests per second")
	fmt.Println("  FLATNAV_RATE_LIMIT_BURST    Burst size")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start with default configuration")
	fmt.Println("  flatnav-server")
	fmt.Println()
	fmt.Println("  # Start on custom port")
	fmt.Println("  flatnav-server -port 9090")
	fmt.Println()
	fmt.Println("  # Start with environment variables")
	fmt.Println("  FLATNAV_PORT=9090 FLATNAV_MAX_NBRS=32 flatnav-server")
	fmt.Println()
}
