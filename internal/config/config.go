// Package config loads the simulation's runtime configuration from a YAML
// file with environment overrides for deploy-time knobs.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" decode.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full runtime configuration.
type Config struct {
	Port        int     `yaml:"port"`
	DBPath      string  `yaml:"db_path"`
	CatalogPath string  `yaml:"catalog_path"` // empty = procedural network only
	LogLevel    string  `yaml:"log_level"`

	Seed          int64 `yaml:"seed"` // 0 = random
	LocationCount int   `yaml:"location_count"`

	PlayerID     string  `yaml:"player_id"`
	StartingCash float64 `yaml:"starting_cash"`
	LoanCeiling  float64 `yaml:"loan_ceiling"`

	CycleInterval Duration `yaml:"cycle_interval"`

	// AdminKey comes from TRADESIM_ADMIN_KEY only, never from the file.
	AdminKey string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:          8080,
		DBPath:        "data/tradesim.db",
		LogLevel:      "info",
		Seed:          42,
		LocationCount: 12,
		PlayerID:      "player-1",
		StartingCash:  100000,
		LoanCeiling:   0.75,
		CycleInterval: Duration(time.Minute),
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		slog.Info("no config file, using defaults", "path", path)
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TRADESIM_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("TRADESIM_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TRADESIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("TRADESIM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.AdminKey = os.Getenv("TRADESIM_ADMIN_KEY")
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.StartingCash < 0 {
		return fmt.Errorf("starting cash must not be negative, got %v", c.StartingCash)
	}
	if c.LoanCeiling <= 0 || c.LoanCeiling > 1 {
		return fmt.Errorf("loan ceiling %v outside (0,1]", c.LoanCeiling)
	}
	if c.CycleInterval <= 0 {
		return fmt.Errorf("cycle interval must be positive, got %v", c.CycleInterval.Std())
	}
	if c.LocationCount < 2 {
		return fmt.Errorf("need at least 2 locations, got %d", c.LocationCount)
	}
	return nil
}

// SlogLevel maps the configured log level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
