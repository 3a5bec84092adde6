package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LISTEN_ADDR", "DATABASE_DRIVER", "STORE_BACKEND", "SESSION_SECRET",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME", "CACHE_BACKEND", "CACHE_TTL", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.StoreBackend != "sql" {
		t.Fatalf("unexpected storage defaults: %s/%s", cfg.DatabaseDriver, cfg.StoreBackend)
	}
	if cfg.SessionSecret != "" {
		t.Fatalf("expected no built-in session secret, got %q", cfg.SessionSecret)
	}
	if cfg.CacheBackend != "none" || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache defaults: %s %v", cfg.CacheBackend, cfg.CacheTTL)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_DRIVER", " Postgres ")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr derived from port, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("expected normalized driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.CacheTTL != 30*time.Second || !cfg.SecureCookies {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestAdminCredentials(t *testing.T) {
	cfg := AppConfig{Admin: AdminConfig{Email: "admin@example.com"}}
	if _, err := cfg.AdminCredentials(); !errors.Is(err, ErrAdminConfigMissing) {
		t.Fatalf("expected ErrAdminConfigMissing, got %v", err)
	}

	cfg.Admin.Password = "secret"
	admin, err := cfg.AdminCredentials()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Name != "Admin" {
		t.Fatalf("expected default admin name, got %q", admin.Name)
	}
}

func TestSessionKeyRequiresEnvironment(t *testing.T) {
	for _, mode := range []string{"release", "debug"} {
		t.Setenv("GIN_MODE", mode)
		t.Setenv("SESSION_SECRET", "")
		if _, err := Load().SessionKey(); !errors.Is(err, ErrSessionSecretMissing) {
			t.Fatalf("%s: expected ErrSessionSecretMissing, got %v", mode, err)
		}
	}

	t.Setenv("SESSION_SECRET", "short")
	if _, err := Load().SessionKey(); !errors.Is(err, ErrSessionSecretMissing) {
		t.Fatalf("expected short secret to be rejected, got %v", err)
	}

	t.Setenv("SESSION_SECRET", " 0123456789abcdef0123 ")
	key, err := Load().SessionKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "0123456789abcdef0123" {
		t.Fatalf("unexpected session key %q", key)
	}
}
