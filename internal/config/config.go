// Package config loads the service configuration from TOML files and
// NOSHOW_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/noshow/pkg/database"
	"github.com/JaimeStill/noshow/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvNoshowEnv             = "NOSHOW_ENV"
	EnvNoshowShutdownTimeout = "NOSHOW_SHUTDOWN_TIMEOUT"
	EnvNoshowVersion         = "NOSHOW_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "NOSHOW_DB_HOST",
	Port:            "NOSHOW_DB_PORT",
	Name:            "NOSHOW_DB_NAME",
	User:            "NOSHOW_DB_USER",
	Password:        "NOSHOW_DB_PASSWORD",
	SSLMode:         "NOSHOW_DB_SSL_MODE",
	MaxOpenConns:    "NOSHOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "NOSHOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "NOSHOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "NOSHOW_DB_CONN_TIMEOUT",
	AutoMigrate:     "NOSHOW_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	ContainerName:    "NOSHOW_STORAGE_CONTAINER_NAME",
	ConnectionString: "NOSHOW_STORAGE_CONNECTION_STRING",
	MaxRetries:       "NOSHOW_STORAGE_MAX_RETRIES",
}

// Config is the root configuration for the no-show review service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Classifier      ClassifierConfig `toml:"classifier"`
	Review          ReviewConfig     `toml:"review"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the NOSHOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvNoshowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load builds the configuration in layers: config.toml when present, then
// config.<NOSHOW_ENV>.toml, then defaults and NOSHOW_* variables.
func Load() (*Config, error) {
	cfg := &Config{}

	for _, path := range layers() {
		layer, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		cfg.Merge(layer)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Review.Merge(&overlay.Review)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvNoshowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvNoshowVersion); v != "" {
		c.Version = v
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"classifier", c.Classifier.Finalize},
		{"review", c.Review.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// layers lists the config files that exist, base first.
func layers() []string {
	candidates := []string{BaseConfigFile}
	if env := os.Getenv(EnvNoshowEnv); env != "" {
		candidates = append(candidates, fmt.Sprintf(OverlayConfigPattern, env))
	}

	var found []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	return found
}
