package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/skillmatch/backend/config"
	httpDelivery "github.com/skillmatch/backend/internal/delivery/http"
	"github.com/skillmatch/backend/internal/domain"
	"github.com/skillmatch/backend/internal/infrastructure/cache"
	"github.com/skillmatch/backend/internal/infrastructure/catalog"
	"github.com/skillmatch/backend/internal/infrastructure/document"
	"github.com/skillmatch/backend/internal/infrastructure/metrics"
	"github.com/skillmatch/backend/internal/infrastructure/posting"
	"github.com/skillmatch/backend/internal/infrastructure/render"
	"github.com/skillmatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting SkillMatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	reportCache, closeCache, err := newCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer closeCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	roles, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		log.Fatalf("Failed to load role catalog: %v", err)
	}
	if cfg.Catalog.File != "" {
		log.Printf("Role catalog: %s (%d roles)", cfg.Catalog.File, roles.Len())
	} else {
		log.Printf("Role catalog: built-in (%d roles)", roles.Len())
	}

	collector := metrics.New()

	serviceConfig := usecase.AnalysisServiceConfig{
		ReportTTL:          cfg.Cache.TTL,
		Documents:          document.NewExtractor(cfg.Matching.EnableDebugLogging),
		Observer:           collector,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	}

	if cfg.Fetch.Enabled {
		client := posting.NewClient(posting.Options{
			Timeout:              cfg.Fetch.Timeout,
			UserAgent:            cfg.Fetch.UserAgent,
			RequestsPerMinute:    cfg.RateLimit.Fetch,
			AllowPrivateNetworks: cfg.Fetch.AllowPrivateNetworks,
		})

		// Enable debug mode in development environment
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Printf("Posting client debug mode enabled")
		}
		serviceConfig.Fetcher = client
		log.Printf("Job URL fetching enabled (timeout %s, %d req/min)", cfg.Fetch.Timeout, cfg.RateLimit.Fetch)
	} else {
		log.Printf("Job URL fetching disabled")
	}

	if cfg.Report.Enabled {
		serviceConfig.Charts = render.NewChartRenderer()
		serviceConfig.Reports = render.NewReportRenderer()
	} else {
		log.Printf("WARNING: report generation disabled - analyses will not include download links")
	}

	// Initialize usecase layer
	analysisService := usecase.NewAnalysisService(roles, reportCache, serviceConfig)

	log.Printf("Matching: debug=%v, upload limit=%d bytes, rate limit=%d req/min",
		cfg.Matching.EnableDebugLogging,
		cfg.Upload.MaxBytes,
		cfg.RateLimit.PerIP)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService, cfg.Upload.MaxBytes)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, collector)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCache builds the report cache selected by configuration and its close function
func newCache(cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, nil, err
		}
		log.Printf("Connected to Redis")
		return redisCache, func() { redisCache.Close() }, nil

	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { memoryCache.Close() }, nil
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
