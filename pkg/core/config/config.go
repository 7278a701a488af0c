// Package config loads service configuration from config/planner.yaml,
// an optional .env file, and the process environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"wealth_planner/pkg/core/projection"
)

// DefaultPath is where the service looks for its YAML file.
const DefaultPath = "config/planner.yaml"

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"` // Postgres; empty selects SQLite
	SQLitePath  string `yaml:"sqlite_path"`
	LogLevel    string `yaml:"log_level"`

	// CacheTTL is a Go duration string ("10m"). Zero disables caching.
	CacheTTL string `yaml:"cache_ttl"`

	// Assumptions fill in any driver a request leaves out.
	Assumptions projection.Assumptions `yaml:"assumptions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:       "8080",
		SQLitePath: "planner.db",
		LogLevel:   "info",
		CacheTTL:   "10m",
		Assumptions: projection.Assumptions{
			Years:                10,
			GrowthRatePercent:    4,
			InflationRatePercent: 2.5,
		},
	}
}

// Load builds the configuration. A missing YAML file or .env file is not an
// error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("SQLITE_PATH", &c.SQLitePath)
	str("LOG_LEVEL", &c.LogLevel)
	str("CACHE_TTL", &c.CacheTTL)

	if v, ok := lookup("PROJECTION_YEARS"); ok && v != "" {
		years, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROJECTION_YEARS %q: %w", v, err)
		}
		c.Assumptions.Years = years
	}
	for key, dst := range map[string]*float64{
		"GROWTH_RATE_PERCENT":    &c.Assumptions.GrowthRatePercent,
		"INFLATION_RATE_PERCENT": &c.Assumptions.InflationRatePercent,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = f
	}
	return nil
}

// TTL parses CacheTTL. Invalid or negative values disable caching.
func (c *Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}
