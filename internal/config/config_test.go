package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default")
	}
	if cfg.PositionMinDistanceM != 2 {
		t.Fatalf("expected 2m movement filter, got %v", cfg.PositionMinDistanceM)
	}
	if !cfg.BarometerAvailable || !cfg.StepCounterAvailable {
		t.Fatalf("expected sensors available by default")
	}
	if cfg.StartTimeout != 5*time.Second {
		t.Fatalf("unexpected start timeout %v", cfg.StartTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("POSITION_MIN_DISTANCE_M", "5.5")
	t.Setenv("POSITION_ACCURACY", "balanced")
	t.Setenv("BAROMETER_AVAILABLE", "false")
	t.Setenv("START_TIMEOUT", "250ms")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.PositionMinDistanceM != 5.5 || cfg.PositionAccuracy != "balanced" {
		t.Fatalf("expected override position settings: %+v", cfg)
	}
	if cfg.BarometerAvailable {
		t.Fatalf("expected barometer disabled")
	}
	if cfg.StartTimeout != 250*time.Millisecond {
		t.Fatalf("expected override timeout, got %v", cfg.StartTimeout)
	}
}
