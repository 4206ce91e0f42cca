package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"walkin-queue-service/internal/adapters/cache"
	"walkin-queue-service/internal/adapters/repositories"
	"walkin-queue-service/internal/api"
	"walkin-queue-service/internal/config"
	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/platform/db"
	"walkin-queue-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It picks the venue store (Postgres or in-memory, optionally behind Redis)
// and starts the HTTP server.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	var store ports.VenueStore
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlDB.Close()

		if err := initAndSeed(ctx, sqlDB, cfg); err != nil {
			log.Fatal(err)
		}
		store = repositories.NewSQLVenueStore(sqlDB, cfg.DefaultCapacity)
		log.Println("Venue store: postgres")
	} else {
		store = repositories.NewMemoryVenueStore(loadCourses(cfg.SeedPath), cfg.DefaultCapacity)
		log.Println("DATABASE_URL not set, venue state is kept in memory")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("Redis ping failed addr=%s err=%v (snapshots will fall through)", cfg.RedisAddr, err)
		}
		store = cache.NewRedisSnapshotStore(store, client, cfg.RedisPrefix, cfg.SnapshotTTL)
		log.Printf("Snapshot cache: redis addr=%s ttl=%s", cfg.RedisAddr, cfg.SnapshotTTL)
	}

	router := api.NewRouter(store, time.Now)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, cfg config.Config) error {
	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedCoursesFromJSON(ctx, sqlDB, cfg.SeedPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("init and seed: %w", err)
		}
		log.Printf("No course seed file path=%s (keeping stored courses)", cfg.SeedPath)
	}

	if err := repositories.EnsureSettings(ctx, sqlDB, cfg.DefaultCapacity); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// loadCourses reads the seed file for the in-memory store, falling back to
// the built-in courses.
func loadCourses(seedPath string) []domain.Course {
	seeds, err := repositories.ReadCourseSeeds(seedPath)
	if err != nil {
		log.Printf("Using default courses: %v", err)
		return domain.DefaultCourses()
	}

	courses := make([]domain.Course, 0, len(seeds))
	for _, s := range seeds {
		courses = append(courses, domain.Course{ID: s.CourseID, Name: s.Name, Minutes: s.Minutes})
	}
	return courses
}
