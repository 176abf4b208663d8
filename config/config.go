/*
config.go - Application configuration

PURPOSE:
  Loads configuration from a YAML file with environment-variable overrides.
  A .env file in the working directory is loaded first (if present) so
  local development can keep credentials out of the shell profile.

PRECEDENCE (lowest to highest):
  1. Built-in defaults
  2. YAML config file (-config flag)
  3. Environment variables

ENVIRONMENT VARIABLES:
  PORT                         HTTP server port
  PROVIDER_DRIVER              Dataset provider driver (sqlite3|postgres|snowflake|memory)
  PROVIDER_DSN                 Driver DSN
  DATASET_DASHBOARD_SUMMARY    Pre-aggregated dataset identifier
  DATASET_ANALYTICS_DASHBOARD  Row-level dataset identifier
  CACHE_TTL_SECONDS            Dataset cache time-to-live
  CACHE_BACKEND                Cache backend (memory|redis)
  REDIS_ADDR                   Redis address when CACHE_BACKEND=redis
  CACHE_REFRESH_MINUTES        Background cache warm interval (0 = disabled)

SEE ALSO:
  - cmd/server/main.go: Flag handling and wiring
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Datasets DatasetConfig  `yaml:"datasets"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ProviderConfig selects and configures the upstream dataset provider.
type ProviderConfig struct {
	// Driver is a database/sql driver name, or "memory" for the built-in
	// demo provider.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// DatasetConfig names the two source datasets.
type DatasetConfig struct {
	// DashboardSummary is the pre-aggregated dataset (quantity sums with an
	// explicit year/month pair and a site dimension, no planned figures).
	DashboardSummary string `yaml:"dashboard_summary"`

	// Analytics is the row-level dataset (per-transaction actual/planned
	// quantities, a date column, and promotion metadata).
	Analytics string `yaml:"analytics"`
}

// CacheConfig controls the read-through dataset cache.
type CacheConfig struct {
	TTLSeconds     int    `yaml:"ttl_seconds"`
	Backend        string `yaml:"backend"` // memory | redis
	RedisAddr      string `yaml:"redis_addr"`
	RefreshMinutes int    `yaml:"refresh_minutes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Provider: ProviderConfig{Driver: "memory"},
		Datasets: DatasetConfig{
			DashboardSummary: "sale_data_final_1",
			Analytics:        "join_data_cl_fill_prepared",
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
			Backend:    "memory",
			RedisAddr:  "localhost:6379",
		},
	}
}

// Load reads configuration from the given YAML file (optional) and applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("PROVIDER_DRIVER"); v != "" {
		cfg.Provider.Driver = v
	}
	if v := os.Getenv("PROVIDER_DSN"); v != "" {
		cfg.Provider.DSN = v
	}
	if v := os.Getenv("DATASET_DASHBOARD_SUMMARY"); v != "" {
		cfg.Datasets.DashboardSummary = v
	}
	if v := os.Getenv("DATASET_ANALYTICS_DASHBOARD"); v != "" {
		cfg.Datasets.Analytics = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("CACHE_REFRESH_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RefreshMinutes = m
		}
	}
}
