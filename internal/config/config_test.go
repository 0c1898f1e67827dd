package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when AUTH_JWT_SECRET is unset")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for a secret shorter than 32 characters")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.App.Port)
	}
	if cfg.Auth.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Fatalf("expected two default CORS origins, got %v", cfg.CORS.Origins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", 40))
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_HOURS", "1")
	t.Setenv("CORS_ORIGINS", " https://todo.example.com , https://app.example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.App.Port)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Fatalf("expected 1h token TTL, got %v", cfg.Auth.AccessTokenTTL)
	}
	want := []string{"https://todo.example.com", "https://app.example.com"}
	if len(cfg.CORS.Origins) != len(want) || cfg.CORS.Origins[0] != want[0] || cfg.CORS.Origins[1] != want[1] {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORS.Origins)
	}
}
