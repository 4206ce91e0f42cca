package config

import (
	"testing"
	"time"
)

func TestGetters(t *testing.T) {
	t.Setenv("WQ_STR", "  hello ")
	t.Setenv("WQ_INT", "12")
	t.Setenv("WQ_BAD_INT", "twelve")
	t.Setenv("WQ_DUR", "90s")
	t.Setenv("WQ_BAD_DUR", "soon")

	if got := Get("WQ_STR", "x"); got != "hello" {
		t.Errorf("Get = %q, want hello", got)
	}
	if got := Get("WQ_UNSET", "x"); got != "x" {
		t.Errorf("Get unset = %q, want x", got)
	}
	if got := GetInt("WQ_INT", 1); got != 12 {
		t.Errorf("GetInt = %d, want 12", got)
	}
	if got := GetInt("WQ_BAD_INT", 1); got != 1 {
		t.Errorf("GetInt invalid = %d, want 1", got)
	}
	if got := GetDuration("WQ_DUR", time.Second); got != 90*time.Second {
		t.Errorf("GetDuration = %v, want 90s", got)
	}
	if got := GetDuration("WQ_BAD_DUR", time.Second); got != time.Second {
		t.Errorf("GetDuration invalid = %v, want 1s", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_ADDR", "REDIS_PREFIX", "SNAPSHOT_TTL", "SEED_PATH", "DEFAULT_CAPACITY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" {
		t.Errorf("expected empty database and redis addresses, got %q %q", cfg.DatabaseURL, cfg.RedisAddr)
	}
	if cfg.SnapshotTTL != 30*time.Second {
		t.Errorf("SnapshotTTL = %v, want 30s", cfg.SnapshotTTL)
	}
	if cfg.DefaultCapacity != 20 {
		t.Errorf("DefaultCapacity = %d, want 20", cfg.DefaultCapacity)
	}
}
