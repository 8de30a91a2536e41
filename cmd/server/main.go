package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/aditya/go-freight/internal/cache"
	"github.com/aditya/go-freight/internal/config"
	"github.com/aditya/go-freight/internal/database"
	"github.com/aditya/go-freight/internal/handler"
	"github.com/aditya/go-freight/internal/maps"
	"github.com/aditya/go-freight/internal/middleware"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/internal/repository"
	"github.com/aditya/go-freight/internal/service"
	"github.com/aditya/go-freight/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	// Initialize PostgreSQL
	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to migrate schema: %v", err)
		}
		log.Println("Schema up to date")
	}

	// Initialize Redis
	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	// Initialize caches
	quoteCache := cache.NewQuoteCache(redis.Client)
	distanceCache := cache.NewDistanceCache(redis.Client)

	// Distance provider: routing API behind the Redis cache, or the route table
	var distances pricing.DistanceProvider = pricing.NewStaticTableProvider()
	if cfg.UseRoutingAPI() {
		routeProvider, err := maps.NewRouteDistanceProvider(cfg.GoogleMapsAPIKey)
		if err != nil {
			log.Printf("Warning: routing API unavailable, using route table: %v", err)
		} else {
			distances = service.NewCachedDistanceProvider(routeProvider, distanceCache, cfg.DistanceCacheTTL)
			log.Println("Distances resolved through the routing API")
		}
	}

	// Initialize repositories
	freightRepo := repository.NewFreightRepository(db.DB)

	// Initialize services
	pricingService := service.NewPricingService(distances, quoteCache, cfg.QuoteTTL)
	freightService := service.NewFreightService(freightRepo, pricingService, quoteCache)

	// Initialize handlers
	pricingHandler := handler.NewPricingHandler(pricingService)
	freightHandler := handler.NewFreightHandler(freightService)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// New Relic middleware
	if nrApp != nil {
		r.Use(middleware.NewRelicMiddleware(nrApp))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "down"})
			return
		}
		if err := redis.Health(ctx); err != nil {
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "down"})
			return
		}

		utils.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"services": map[string]string{"database": "up", "redis": "up"},
		})
	})

	// API v1 routes
	rateLimiter := middleware.NewRateLimiter(redis.Client, cfg.RateLimitRequests, cfg.RateLimitWindow)
	idempotencyMw := middleware.NewIdempotencyMiddleware(redis.Client)

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimiter.Handler)
		r.Use(idempotencyMw.Handler)

		pricingHandler.RegisterRoutes(r)
		freightHandler.RegisterRoutes(r)
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if nrApp != nil {
			nrApp.Shutdown(10 * time.Second)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Println("API endpoints:")
	log.Println("  POST /v1/quotes                  - Price a shipment")
	log.Println("  GET  /v1/quotes/{id}             - Fetch a quote")
	log.Println("  GET  /v1/distance                - Estimate a route distance")
	log.Println("  GET  /v1/tariffs/vehicles        - Vehicle catalog")
	log.Println("  GET  /v1/tariffs/fees            - Additional fees")
	log.Println("  POST /v1/freights                - Book a freight")
	log.Println("  POST /v1/freights/{id}/assign    - Assign a transporter")
	log.Println("  POST /v1/freights/{id}/status    - Advance freight status")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
