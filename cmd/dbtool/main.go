package main

import (
	"context"
	"database/sql"
	"log"

	"walkin-queue-service/internal/adapters/repositories"
	"walkin-queue-service/internal/config"
	"walkin-queue-service/internal/platform/db"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	initAndSeed(ctx, sqlDB, cfg)
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, cfg config.Config) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding courses from %s...", cfg.SeedPath)
	if err := repositories.SeedCoursesFromJSON(ctx, sqlDB, cfg.SeedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	if err := repositories.EnsureSettings(ctx, sqlDB, cfg.DefaultCapacity); err != nil {
		log.Fatalf("settings failed: %v", err)
	}
	log.Println("Seeding complete.")
}
