package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the webhook bridge.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// AllowAnyOrigin relaxes the same-origin check on the debug tap socket.
	AllowAnyOrigin bool
	TapEnabled     bool

	// DefaultLocale and DefaultTimezone fill shim requests synthesized for
	// platforms whose native schema carries no locale of its own.
	DefaultLocale   string
	DefaultTimezone string

	DatabaseURL string
	RedisURL    string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "astrelay"),
		AllowAnyOrigin:   false,
		TapEnabled:       false,
		DefaultLocale:    envOrDefault("DIALOG_DEFAULT_LOCALE", "ru-RU"),
		DefaultTimezone:  envOrDefault("DIALOG_DEFAULT_TIMEZONE", "UTC"),
		DatabaseURL:      trimmedEnv("DATABASE_URL"),
		RedisURL:         trimmedEnv("REDIS_URL"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.TapEnabled, err = boolFromEnv("APP_TAP_ENABLED", cfg.TapEnabled)
	if err != nil {
		return Config{}, err
	}

	if cfg.ShutdownTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	if cfg.DefaultLocale == "" {
		return Config{}, fmt.Errorf("DIALOG_DEFAULT_LOCALE must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
