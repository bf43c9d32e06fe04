package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/civicworks/facilitycare/internal/adapters/database"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
	"github.com/civicworks/facilitycare/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				schedule_attachments,
				maintenance_schedules,
				issues,
				facilities
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	facilityRepo := database.NewFacilityAdapter(pgClient)

	now := time.Now()
	facilities := []entities.Facility{
		{Code: "PARK-001", Kind: entities.FacilityKindPark, Name: "Riverside Park", Location: "12 Riverside Drive", Status: entities.FacilityStatusActive, CreatedAt: now, UpdatedAt: now},
		{Code: "PARK-002", Kind: entities.FacilityKindPark, Name: "Hillcrest Park", Location: "3 Hillcrest Avenue", Status: entities.FacilityStatusActive, CreatedAt: now, UpdatedAt: now},
		{Code: "WC-001", Kind: entities.FacilityKindToilet, Name: "Central Station Toilets", Location: "Central Station concourse", Status: entities.FacilityStatusActive, CreatedAt: now, UpdatedAt: now},
		{Code: "WC-002", Kind: entities.FacilityKindToilet, Name: "Market Square Toilets", Location: "Market Square, north side", Status: entities.FacilityStatusActive, CreatedAt: now, UpdatedAt: now},
		{Code: "FF-001", Kind: entities.FacilityKindFootballField, Name: "Eastside Football Field", Location: "40 East Road", Status: entities.FacilityStatusActive, CreatedAt: now, UpdatedAt: now},
	}

	for _, f := range facilities {
		if err := facilityRepo.Create(ctx, &f); err != nil {
			log.Printf("Failed to create facility %s: %v", f.Code, err)
		}
	}

	log.Printf("Seeded %d facilities", len(facilities))
}
