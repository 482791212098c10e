package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port            string
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string
	ProviderTimeout time.Duration
	LogLevel        string
	Env             string // dev|prod
	SentryDSN       string
	Release         string
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getenv("AUTH_PROVIDER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("AUTH_PROVIDER_TIMEOUT: %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     dbURL,
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		ProviderTimeout: timeout,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Env:             getenv("ENV", "dev"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		Release:         getenv("RELEASE", "dev"),
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
