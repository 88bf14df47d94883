package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "TRACK_POLL_SECONDS", "KAFKA_BROKERS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.TrackPollInterval != 15*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.TrackPollInterval)
	}
	if cfg.KafkaBrokers != nil {
		t.Fatalf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Fatalf("expected default origin, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TRACK_POLL_SECONDS", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "nope")
	cfg := FromEnv()
	if cfg.TrackPollInterval != 5*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.TrackPollInterval)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("invalid duration should fall back, got %s", cfg.ShutdownTimeout)
	}
}
