package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Source    SourceConfig    `yaml:"source"`
	Server    ServerConfig    `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig holds the reporting window and ranking knobs.
type DashboardConfig struct {
	Marketplace string `yaml:"marketplace"`
	WindowDays  int    `yaml:"window_days"`
	TopN        int    `yaml:"top_n"`
}

// SourceConfig selects and parameterizes the sales/traffic data source.
type SourceConfig struct {
	Mode   string       `yaml:"mode"` // "mock" is the only wired mode
	Seed   int64        `yaml:"seed"`
	ASINs  []string     `yaml:"asins"`
	Amazon AmazonConfig `yaml:"amazon"`
}

// AmazonConfig carries seller-account credentials for a live source.
type AmazonConfig struct {
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	AssociateTag string `yaml:"associate_tag"`
	Marketplace  string `yaml:"marketplace"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./opsdash.db"},
		Dashboard: DashboardConfig{
			Marketplace: "US",
			WindowDays:  7,
			TopN:        10,
		},
		Source: SourceConfig{
			Mode: "mock",
			Seed: 2024,
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPSDASH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DASHBOARD_MARKETPLACE"); v != "" {
		cfg.Dashboard.Marketplace = v
	}
	if v := os.Getenv("DASHBOARD_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.WindowDays = n
		}
	}
	if v := os.Getenv("DASHBOARD_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.TopN = n
		}
	}
	if v := os.Getenv("AMAZON_ACCESS_KEY"); v != "" {
		cfg.Source.Amazon.AccessKey = v
	}
	if v := os.Getenv("AMAZON_SECRET_KEY"); v != "" {
		cfg.Source.Amazon.SecretKey = v
	}
	if v := os.Getenv("AMAZON_ASSOCIATE_TAG"); v != "" {
		cfg.Source.Amazon.AssociateTag = v
	}
	if v := os.Getenv("AMAZON_MARKETPLACE"); v != "" {
		cfg.Source.Amazon.Marketplace = v
	}
}
