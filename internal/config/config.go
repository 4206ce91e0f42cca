package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	RedisAddr       string
	RedisPrefix     string
	SnapshotTTL     time.Duration
	SeedPath        string
	DefaultCapacity int
}

// Load reads .env when present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	return Config{
		Port:            Get("PORT", "8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPrefix:     Get("REDIS_PREFIX", "walkin"),
		SnapshotTTL:     GetDuration("SNAPSHOT_TTL", 30*time.Second),
		SeedPath:        Get("SEED_PATH", "data/seeds/courses.json"),
		DefaultCapacity: GetInt("DEFAULT_CAPACITY", 20),
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt falls back on unset or unparsable values.
func GetInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// GetDuration accepts time.ParseDuration syntax ("45s", "2m").
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration key=%s value=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
