//go:build ignore

package main

import (
	"context"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"github.com/aditya/go-freight/internal/cache"
	"github.com/aditya/go-freight/internal/config"
	"github.com/aditya/go-freight/internal/database"
	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/internal/repository"
	"github.com/aditya/go-freight/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	quoteCache := cache.NewQuoteCache(redis.Client)
	pricingService := service.NewPricingService(pricing.NewStaticTableProvider(), quoteCache, cfg.QuoteTTL)
	freightService := service.NewFreightService(repository.NewFreightRepository(db.DB), pricingService, quoteCache)

	cities := pricing.KnownCities()
	shippers := make([]string, 10)
	for i := range shippers {
		shippers[i] = uuid.NewString()
	}
	transporters := make([]string, 20)
	for i := range transporters {
		transporters[i] = uuid.NewString()
	}

	log.Println("Creating 100 freights...")
	var created, rejected int
	statusCounts := make(map[string]int)

	for i := 0; i < 100; i++ {
		origin := cities[rand.Intn(len(cities))]
		destination := cities[rand.Intn(len(cities))]
		if origin == destination {
			continue
		}

		req := &models.CreateFreightRequest{
			ShipperID: shippers[rand.Intn(len(shippers))],
			Quote: &models.QuoteRequest{
				Origin:      origin,
				Destination: destination,
				VehicleType: string(pricing.VehicleTypes[rand.Intn(len(pricing.VehicleTypes))]),
				WeightKg:    float64(rand.Intn(20000)),
				EmptyReturn: rand.Intn(3) == 0,
			},
		}

		freight, err := freightService.CreateFreight(ctx, req, "")
		if err != nil {
			// Mostly weights a vehicle class cannot price
			rejected++
			continue
		}
		created++

		// Walk part of the lifecycle so listings have variety
		switch rand.Intn(4) {
		case 1, 2, 3:
			assign := &models.AssignTransporterRequest{TransporterID: transporters[rand.Intn(len(transporters))]}
			assigned, err := freightService.AssignTransporter(ctx, freight.ID, assign)
			if err != nil {
				log.Printf("Failed to assign freight %s: %v", freight.ID, err)
				continue
			}
			freight = assigned
		}
		if freight.Status == models.FreightStatusAssigned && rand.Intn(2) == 0 {
			if moved, err := freightService.UpdateStatus(ctx, freight.ID, models.FreightStatusInTransit); err == nil {
				freight = moved
			}
		}
		statusCounts[freight.Status]++
	}

	log.Println("\n=== Seed Data Summary ===")
	log.Printf("Freights created: %d (%d rejected by the tariff)", created, rejected)
	for status, n := range statusCounts {
		log.Printf("  %-10s %d", status, n)
	}
	log.Println("\nSample Shipper ID:", shippers[0])
}
