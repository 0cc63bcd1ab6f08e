package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/robosite")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("BASE_URL", "http://localhost:3000")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("unexpected SessionMaxAge: %d", cfg.SessionMaxAge)
	}
	if cfg.DefaultTeam != "pigeons" {
		t.Errorf("unexpected DefaultTeam: %q", cfg.DefaultTeam)
	}
	if cfg.RateLimitGeneral != 120 || cfg.RateLimitLogin != 10 {
		t.Errorf("unexpected rate limits: %d %d", cfg.RateLimitGeneral, cfg.RateLimitLogin)
	}
	if cfg.SessionCleanupInterval != time.Hour {
		t.Errorf("unexpected SessionCleanupInterval: %v", cfg.SessionCleanupInterval)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("unexpected ServerPort: %q", cfg.ServerPort)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("unexpected CORSAllowedOrigin: %q", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_MissingRequired_ListsAllMissing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("error should name all missing variables: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("DEFAULT_TEAM", "phoenixes")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "30m")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SessionMaxAge != 3600 {
		t.Errorf("unexpected SessionMaxAge: %d", cfg.SessionMaxAge)
	}
	if cfg.DefaultTeam != "phoenixes" {
		t.Errorf("unexpected DefaultTeam: %q", cfg.DefaultTeam)
	}
	if cfg.SessionCleanupInterval != 30*time.Minute {
		t.Errorf("unexpected SessionCleanupInterval: %v", cfg.SessionCleanupInterval)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("unexpected ServerPort: %q", cfg.ServerPort)
	}
}

// CookieSecureはBASE_URLのスキームから導出する。
func TestLoad_CookieSecureFollowsBaseURLScheme(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CookieSecure {
		t.Error("http base URL should not enable secure cookies")
	}

	t.Setenv("BASE_URL", "https://portal.example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("https base URL should enable secure cookies")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_GENERAL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("invalid value should fall back to the default, got %d", cfg.RateLimitGeneral)
	}
}
