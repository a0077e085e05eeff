package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/database"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvRegEnv             = "REG_ENV"
	EnvRegShutdownTimeout = "REG_SHUTDOWN_TIMEOUT"
	EnvRegVersion         = "REG_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "REG_DB_HOST",
	Port:            "REG_DB_PORT",
	Name:            "REG_DB_NAME",
	User:            "REG_DB_USER",
	Password:        "REG_DB_PASSWORD",
	SSLMode:         "REG_DB_SSL_MODE",
	MaxOpenConns:    "REG_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "REG_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "REG_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "REG_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "REG_STORAGE_CONTAINER_NAME",
	ConnectionString: "REG_STORAGE_CONNECTION_STRING",
	MaxListSize:      "REG_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "REG_STORAGE_MAX_RETRIES",
}

// Config is the root configuration for the rule interpretation service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Pipeline        pipeline.Config      `toml:"pipeline"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the REG_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvRegEnv); env != "" {
		return env
	}
	return "local"
}

// AgentConfigured reports whether a generation agent is set up. The
// service runs without one; rule generation then degrades to fallback
// rules.
func (c *Config) AgentConfigured() bool {
	return c.Agent.Provider != nil && c.Agent.Provider.Name != ""
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
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
	c.Agent.Merge(&overlay.Agent)
	c.Pipeline = c.Pipeline.Merge(overlay.Pipeline)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	FinalizePipeline(&c.Pipeline)
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvRegShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvRegVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
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

func overlayPath() string {
	if env := os.Getenv(EnvRegEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
