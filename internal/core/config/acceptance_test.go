package config

import (
	"os"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()
	return tmpfile.Name()
}

// TestConfigPrecedence verifies file and environment layering.
func TestConfigPrecedence(t *testing.T) {
	t.Run("config file values are applied", func(t *testing.T) {
		path := writeConfigFile(t, `http_port: 8181
grpc_port: 9191
database_url: "postgres://fk@localhost/forms"
redis_url: "redis://localhost:6379/2"
cache_ttl: 30s
log_format: console
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig error: %v", err)
		}
		if cfg.HTTPPort != 8181 || cfg.GRPCPort != 9191 {
			t.Fatalf("expected ports 8181/9191, got %d/%d", cfg.HTTPPort, cfg.GRPCPort)
		}
		if cfg.RedisURL != "redis://localhost:6379/2" {
			t.Fatalf("unexpected redis url %q", cfg.RedisURL)
		}
		if cfg.CacheTTL.Seconds() != 30 {
			t.Fatalf("expected cache_ttl 30s, got %v", cfg.CacheTTL)
		}
		if cfg.LogFormat != "console" {
			t.Fatalf("expected console log format, got %s", cfg.LogFormat)
		}
	})

	t.Run("environment overrides config file", func(t *testing.T) {
		os.Setenv("FK_HTTP_PORT", "8080")
		defer os.Unsetenv("FK_HTTP_PORT")

		path := writeConfigFile(t, "http_port: 9090\n")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig error: %v", err)
		}
		// In real CLI usage, flags override both via cmd.Flags().Changed.
		if cfg.HTTPPort != 8080 {
			t.Fatalf("environment should override config file, expected 8080, got %d", cfg.HTTPPort)
		}
	})

	t.Run("invalid file values rejected", func(t *testing.T) {
		path := writeConfigFile(t, "cache_ttl: 0s\n")
		if _, err := LoadConfig(path); err == nil {
			t.Fatal("expected error for zero cache_ttl")
		}
	})
}
