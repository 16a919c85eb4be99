package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	MCP    MCPConfig    `yaml:"mcp"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"SCRIBE_SERVER_HOST"`
	Port int    `yaml:"port" env:"SCRIBE_SERVER_PORT"`
}

// StoreConfig selects and configures the transcript backend.
type StoreConfig struct {
	// Backend is "sqlite" or "insights".
	Backend  string         `yaml:"backend" env:"SCRIBE_STORE_BACKEND"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Insights InsightsConfig `yaml:"insights"`
}

type SQLiteConfig struct {
	Path     string `yaml:"path" env:"SCRIBE_SQLITE_PATH"`
	PageSize int    `yaml:"page_size" env:"SCRIBE_SQLITE_PAGE_SIZE"`
}

type InsightsConfig struct {
	InstrumentationKey string `yaml:"instrumentation_key" env:"SCRIBE_INSIGHTS_INSTRUMENTATION_KEY"`
	ApplicationID      string `yaml:"application_id" env:"SCRIBE_INSIGHTS_APPLICATION_ID"`
	APIKey             string `yaml:"api_key" env:"SCRIBE_INSIGHTS_API_KEY"`
	IngestURL          string `yaml:"ingest_url" env:"SCRIBE_INSIGHTS_INGEST_URL"`
	APIURL             string `yaml:"api_url" env:"SCRIBE_INSIGHTS_API_URL"`
}

type MCPConfig struct {
	// Mode is "http" (streamable handler mounted on the API server) or
	// "stdio" (MCP only, logs to stderr).
	Mode string `yaml:"mode" env:"SCRIBE_MCP_MODE"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"SCRIBE_LOG_LEVEL"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment values win over file values.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			SQLite: SQLiteConfig{
				Path: "scribe.db",
			},
		},
		MCP: MCPConfig{
			Mode: "http",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SCRIBE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func validate(cfg Config) error {
	switch cfg.Store.Backend {
	case "sqlite":
		if cfg.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case "insights":
		if cfg.Store.Insights.InstrumentationKey == "" {
			return fmt.Errorf("store.insights.instrumentation_key is required for the insights backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.MCP.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("unknown mcp mode %q", cfg.MCP.Mode)
	}

	return nil
}
