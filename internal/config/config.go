// Package config loads arbor's YAML configuration.
//
// Config file locations (priority order):
//  1. $ARBOR_CONFIG
//  2. ./arbor.yaml
//  3. $XDG_CONFIG_HOME/arbor/config.yaml
//  4. ~/.config/arbor/config.yaml
//
// A missing file is not an error; DefaultConfig is used instead.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arbor/internal/logging"
)

// DefaultDatabasePath is the store location when none is configured.
const DefaultDatabasePath = "./arbor.db"

// Config is the arbor configuration file.
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Schema   SchemaConfig   `yaml:"schema"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite node store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchemaConfig names an optional CUE file of node types merged over the
// builtin types.
type SchemaConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The second result is the path loaded, "" for defaults.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if _, err := cfg.LogLevel(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path, creating its directory.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Log:      LogConfig{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	return logging.ParseLevel(c.Log.Level)
}
