// Package config loads the data layer's configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full configuration of the data layer daemon.
type Config struct {
	API struct {
		BaseURL       string        `yaml:"base_url" env:"MORINGA_API_BASE_URL"`
		Timeout       time.Duration `yaml:"timeout" env:"MORINGA_API_TIMEOUT"`
		RatePerSecond float64       `yaml:"rate_per_second" env:"MORINGA_API_RATE_PER_SECOND"`
	} `yaml:"api"`

	Store struct {
		// RequestFencing drops settlements superseded by a newer operation
		// of the same store. Off by default: the legacy behavior lets the
		// last settlement win.
		RequestFencing bool `yaml:"request_fencing" env:"MORINGA_REQUEST_FENCING"`
	} `yaml:"store"`

	Storage struct {
		Backend       string `yaml:"backend" env:"MORINGA_STORAGE_BACKEND"`
		Dir           string `yaml:"dir" env:"MORINGA_STORAGE_DIR"`
		RedisAddr     string `yaml:"redis_addr" env:"MORINGA_REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" env:"MORINGA_REDIS_PASSWORD"`
		RedisPrefix   string `yaml:"redis_prefix" env:"MORINGA_REDIS_PREFIX"`
	} `yaml:"storage"`

	// RefreshSchedule is a cron spec (e.g. "@every 5m") for background
	// listing refreshes. Empty disables them.
	RefreshSchedule string `yaml:"refresh_schedule" env:"MORINGA_REFRESH_SCHEDULE"`

	// MetricsAddr serves Prometheus metrics when set (e.g. ":9180").
	MetricsAddr string `yaml:"metrics_addr" env:"MORINGA_METRICS_ADDR"`
}

// Load reads path (when non-empty) and then applies environment overrides.
// A .env file in the working directory is honored if present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment wins over the file; envdecode leaves fields alone when
	// the variable is unset.
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (c *Config) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = ".moringaconnect"
	}
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Storage.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("storage.backend must be %q or %q", BackendFile, BackendRedis)
	}
	if c.Storage.Backend == BackendRedis && c.Storage.RedisAddr == "" {
		return fmt.Errorf("storage.redis_addr is required for the redis backend")
	}
	return nil
}
