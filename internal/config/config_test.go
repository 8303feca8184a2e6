package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.GPSDriftKmh != 50.0 {
		t.Fatalf("expected default drift threshold, got %v", cfg.GPSDriftKmh)
	}
	if cfg.MinPathPoints != 10 {
		t.Fatalf("expected default minimum path points, got %v", cfg.MinPathPoints)
	}
	if cfg.BandWarningM != 25.0 {
		t.Fatalf("expected default warning band, got %v", cfg.BandWarningM)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLAIM_CLOSURE_DISTANCE_M", "45")
	t.Setenv("SPEED_STOP_CONSECUTIVE", "3")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.ClosureDistanceM != 45 {
		t.Fatalf("expected override closure distance")
	}
	if cfg.OverspeedStopCount != 3 {
		t.Fatalf("expected override stop consecutive")
	}
}
