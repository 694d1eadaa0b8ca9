package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_BIND_ADDR", "APP_METRICS_NAMESPACE", "APP_SHUTDOWN_TIMEOUT",
		"APP_ALLOW_ANY_ORIGIN", "APP_TAP_ENABLED",
		"DIALOG_DEFAULT_LOCALE", "DIALOG_DEFAULT_TIMEZONE",
		"DATABASE_URL", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.MetricsNamespace != "astrelay" {
		t.Fatalf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.DefaultLocale != "ru-RU" || cfg.DefaultTimezone != "UTC" {
		t.Fatalf("shim defaults = (%q, %q)", cfg.DefaultLocale, cfg.DefaultTimezone)
	}
	if cfg.TapEnabled || cfg.AllowAnyOrigin {
		t.Fatalf("debug features must default off")
	}
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Fatalf("store URLs must default empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("APP_TAP_ENABLED", "yes")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "1")
	t.Setenv("DIALOG_DEFAULT_LOCALE", "en-US")
	t.Setenv("DIALOG_DEFAULT_TIMEZONE", "Europe/Berlin")
	t.Setenv("DATABASE_URL", " postgres://localhost/astrelay ")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if !cfg.TapEnabled || !cfg.AllowAnyOrigin {
		t.Fatalf("debug flags not applied: %+v", cfg)
	}
	if cfg.DefaultLocale != "en-US" || cfg.DefaultTimezone != "Europe/Berlin" {
		t.Fatalf("shim defaults = (%q, %q)", cfg.DefaultLocale, cfg.DefaultTimezone)
	}
	if cfg.DatabaseURL != "postgres://localhost/astrelay" {
		t.Fatalf("DatabaseURL = %q, want trimmed", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "APP_SHUTDOWN_TIMEOUT", value: "soon"},
		{name: "too short shutdown", key: "APP_SHUTDOWN_TIMEOUT", value: "10ms"},
		{name: "bad bool", key: "APP_TAP_ENABLED", value: "maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}
