package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_DEV_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.RedisURL)
	}
	if cfg.JWTSecret != DefaultJWTSecret {
		t.Fatalf("expected default secret in dev mode, got %q", cfg.JWTSecret)
	}
	if cfg.CartIdleTTL != 2*time.Hour {
		t.Fatalf("expected 2h cart idle ttl, got %s", cfg.CartIdleTTL)
	}
}

func TestLoad_RejectsDefaultSecretOutsideDevMode(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for default secret")
	}

	t.Setenv("STOREFRONT_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for empty secret")
	}

	t.Setenv("STOREFRONT_DEV_MODE", "true")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for empty secret in dev mode")
	}
}

func TestLoad_AcceptsCustomSecret(t *testing.T) {
	t.Setenv("STOREFRONT_JWT_SECRET", "s3cret-for-tests")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DevMode || cfg.JWTSecret != "s3cret-for-tests" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoad_PrefixedOverride(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_ADDR", ":9090")
	t.Setenv("STOREFRONT_JWT_TTL", "1h")
	t.Setenv("STOREFRONT_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("STOREFRONT_JWT_SECRET", "s3cret-for-tests")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if cfg.JWTTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("STOREFRONT_JWT_TTL", "0s")
	t.Setenv("STOREFRONT_JWT_SECRET", "s3cret-for-tests")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
