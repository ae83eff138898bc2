// Package config loads bot configuration from YAML and resolves the bot
// token from the environment or well-known files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds accepted in the config file.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// RedisConfig configures the Redis session store and distributed locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// SQLiteConfig configures the SQLite session store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig selects and configures session persistence.
type StoreConfig struct {
	Kind   string       `yaml:"kind"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// GeocoderConfig configures reverse geocoding for shared locations.
type GeocoderConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config is the full bot configuration.
type Config struct {
	// Token is the bot API token. Usually left empty in the file and
	// resolved via ResolveToken instead.
	Token string `yaml:"token"`

	// Table is the path to the CSV rule table.
	Table string `yaml:"table"`

	// Watch enables reloading the table when the file changes.
	Watch bool `yaml:"watch"`

	Store    StoreConfig    `yaml:"store"`
	Geocoder GeocoderConfig `yaml:"geocoder"`

	// NotifyTimeout bounds delivery of cross-chat notifications.
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	// Listen is the address for the metrics and health endpoints. Empty
	// disables the HTTP listener.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Table:         "table.csv",
		Watch:         true,
		Store:         StoreConfig{Kind: StoreMemory},
		NotifyTimeout: 10 * time.Second,
		LogLevel:      "info",
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis store")
		}
	case StoreSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Table == "" {
		return fmt.Errorf("table path is required")
	}
	return nil
}
