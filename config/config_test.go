package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/carelum")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Fatalf("ProviderTimeout = %v, want 5s", cfg.ProviderTimeout)
	}
}

func TestLoadProviderTimeout(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/carelum")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProviderTimeout != 250*time.Millisecond {
		t.Fatalf("ProviderTimeout = %v, want 250ms", cfg.ProviderTimeout)
	}
}

func TestLoadRejectsBareNumberTimeout(t *testing.T) {
	// A unit-less value is ambiguous; it must carry a suffix like "5s".
	t.Setenv("DATABASE_URL", "postgres://localhost/carelum")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "7")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a unit-less timeout")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_PROVIDER_TIMEOUT", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted an empty DATABASE_URL")
	}
}
