// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // per-request context deadline
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type MetricsConfig struct {
	Port int `yaml:"port"` // negative disables the metrics listener
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

// RedisConfig is optional; an empty URL switches to the in-process locker
// and disables rate limiting.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GitHubConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type SyncConfig struct {
	LockTTL        time.Duration `yaml:"lock_ttl"`
	LockRetries    int           `yaml:"lock_retries"`
	LockRetryDelay time.Duration `yaml:"lock_retry_delay"`
	WriteTimeout   time.Duration `yaml:"write_timeout"` // bound for the storage transaction
}

type RateLimitConfig struct {
	SyncRequests int           `yaml:"sync_requests"` // per client per window; negative disables
	Window       time.Duration `yaml:"window"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	GitHub    GitHubConfig    `yaml:"github"`
	Sync      SyncConfig      `yaml:"sync"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies a .env file when present,
// overlays environment variables and fills defaults. A missing config file is
// not an error as long as the environment supplies the required values.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookup("DATABASE_URL"); ok {
		cfg.Database.URL = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		cfg.Redis.URL = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := lookup("GITHUB_API_URL"); ok {
		cfg.GitHub.BaseURL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 3000
	}
	cfg.HTTP.ReadTimeout = orDuration(cfg.HTTP.ReadTimeout, 15*time.Second)
	cfg.HTTP.WriteTimeout = orDuration(cfg.HTTP.WriteTimeout, 60*time.Second)
	cfg.HTTP.RequestTimeout = orDuration(cfg.HTTP.RequestTimeout, 55*time.Second)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Metrics.Port < 0 {
		cfg.Metrics.Port = 0
	} else if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}

	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}

	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = "https://api.github.com"
	}
	cfg.GitHub.BaseURL = strings.TrimRight(cfg.GitHub.BaseURL, "/")
	cfg.GitHub.Timeout = orDuration(cfg.GitHub.Timeout, 10*time.Second)
	if cfg.GitHub.UserAgent == "" {
		cfg.GitHub.UserAgent = "github-repo-mirror/1.0"
	}

	cfg.Sync.LockTTL = orDuration(cfg.Sync.LockTTL, 2*time.Minute)
	if cfg.Sync.LockRetries <= 0 {
		cfg.Sync.LockRetries = 40
	}
	cfg.Sync.LockRetryDelay = orDuration(cfg.Sync.LockRetryDelay, 250*time.Millisecond)
	cfg.Sync.WriteTimeout = orDuration(cfg.Sync.WriteTimeout, 30*time.Second)

	if cfg.RateLimit.SyncRequests < 0 {
		cfg.RateLimit.SyncRequests = 0
	} else if cfg.RateLimit.SyncRequests == 0 {
		cfg.RateLimit.SyncRequests = 30
	}
	cfg.RateLimit.Window = orDuration(cfg.RateLimit.Window, time.Minute)
}

// Validate checks the values no default can stand in for.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	u, err := url.Parse(c.GitHub.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("github.base_url must be an absolute http(s) URL, got %q", c.GitHub.BaseURL)
	}
	return nil
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool { return c.Redis.URL != "" }

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
