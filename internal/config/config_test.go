//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "REDIS_URL", "REDIS_PASSWORD", "GITHUB_API_URL", "LOG_LEVEL", "LOG_FORMAT", "PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults on a minimal file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "database:\n  url: postgres://u:p@localhost/db\n")

		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.HTTP.Port != 3000 {
			t.Errorf("expected default port 3000, got %d", cfg.HTTP.Port)
		}
		if cfg.GitHub.BaseURL != "https://api.github.com" {
			t.Errorf("unexpected base url %q", cfg.GitHub.BaseURL)
		}
		if cfg.GitHub.Timeout != 10*time.Second {
			t.Errorf("expected 10s github timeout, got %v", cfg.GitHub.Timeout)
		}
		if cfg.Sync.LockTTL != 2*time.Minute || cfg.Sync.LockRetries != 40 {
			t.Errorf("unexpected lock defaults: %+v", cfg.Sync)
		}
		if cfg.RateLimit.SyncRequests != 30 || cfg.RateLimit.Window != time.Minute {
			t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("unexpected log defaults: %+v", cfg.Log)
		}
		if cfg.RedisEnabled() {
			t.Error("redis must be disabled without a url")
		}
		if !cfg.Runtime.Dev {
			t.Error("expected dev flag to be carried into runtime config")
		}
	})

	t.Run("should read every section from yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
http:
  port: 8080
  request_timeout: 5s
log:
  level: debug
  format: console
database:
  url: postgres://yaml
  max_conns: 3
redis:
  url: localhost:6379
github:
  base_url: http://127.0.0.1:9999/
  timeout: 2s
sync:
  lock_retries: 3
rate_limit:
  sync_requests: -1
metrics:
  port: -1
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.HTTP.Port != 8080 || cfg.HTTP.RequestTimeout != 5*time.Second {
			t.Errorf("unexpected http config: %+v", cfg.HTTP)
		}
		if cfg.Database.MaxConns != 3 {
			t.Errorf("expected max_conns 3, got %d", cfg.Database.MaxConns)
		}
		if cfg.GitHub.BaseURL != "http://127.0.0.1:9999" {
			t.Errorf("expected trailing slash to be trimmed, got %q", cfg.GitHub.BaseURL)
		}
		if !cfg.RedisEnabled() {
			t.Error("expected redis to be enabled")
		}
		if cfg.Sync.LockRetries != 3 {
			t.Errorf("expected lock retries 3, got %d", cfg.Sync.LockRetries)
		}
		if cfg.RateLimit.SyncRequests != 0 {
			t.Errorf("negative sync_requests must disable rate limiting, got %d", cfg.RateLimit.SyncRequests)
		}
		if cfg.Metrics.Port != 0 {
			t.Errorf("negative metrics port must disable the listener, got %d", cfg.Metrics.Port)
		}
	})

	t.Run("env should override yaml", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://env")
		t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
		t.Setenv("PORT", "4000")
		path := writeConfig(t, "database:\n  url: postgres://yaml\n")

		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.URL != "postgres://env" {
			t.Errorf("expected env database url, got %q", cfg.Database.URL)
		}
		if cfg.GitHub.BaseURL != "https://ghe.example.com/api/v3" {
			t.Errorf("expected env base url, got %q", cfg.GitHub.BaseURL)
		}
		if cfg.HTTP.Port != 4000 {
			t.Errorf("expected env port, got %d", cfg.HTTP.Port)
		}
	})

	t.Run("missing file is fine when env carries the database url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://env-only")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.URL != "postgres://env-only" {
			t.Errorf("unexpected database url %q", cfg.Database.URL)
		}
	})

	t.Run("should fail validation", func(t *testing.T) {
		testCases := []struct {
			name string
			body string
			env  map[string]string
		}{
			{name: "no database url", body: "http:\n  port: 1\n"},
			{name: "relative base url", body: "database:\n  url: x\ngithub:\n  base_url: /api\n"},
			{name: "ftp base url", body: "database:\n  url: x\ngithub:\n  base_url: ftp://host\n"},
			{name: "bad PORT", body: "database:\n  url: x\n", env: map[string]string{"PORT": "eighty"}},
			{name: "malformed yaml", body: "database: [\n"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				clearEnv(t)
				for k, v := range tc.env {
					t.Setenv(k, v)
				}
				if _, err := LoadConfig(writeConfig(t, tc.body), false); err == nil {
					t.Fatal("expected an error, got nil")
				}
			})
		}
	})
}
