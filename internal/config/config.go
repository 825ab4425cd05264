package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Cedric-Liu/3bros/internal/strategy"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		AllowOrigins   []string `yaml:"allow_origins"`
		ProductionMode bool     `yaml:"production_mode"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Provider struct {
		// Source selects the quote backend: "tencent" or "mock".
		Source string `yaml:"source"`
	} `yaml:"provider"`
	Push struct {
		// ServerChanKey seeds the settings store on first run; the
		// runtime key always comes from the store.
		ServerChanKey string `yaml:"serverchan_key"`
		Time          string `yaml:"time"`
		Retries       int    `yaml:"retries"`
	} `yaml:"push"`
	Scan struct {
		Workers int `yaml:"workers"`
		Limit   int `yaml:"limit"`
	} `yaml:"scan"`
	Strategy strategy.Config `yaml:"strategy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	// Strategy thresholds start from the defaults so a partial
	// strategy block in YAML only overrides what it names.
	cfg := &Config{Strategy: strategy.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("QUOTE_SOURCE"); v != "" {
		cfg.Provider.Source = v
	}
	if v := os.Getenv("SERVERCHAN_KEY"); v != "" {
		cfg.Push.ServerChanKey = v
	}
	if v := os.Getenv("PUSH_TIME"); v != "" {
		cfg.Push.Time = v
	}
	if v := os.Getenv("SCAN_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Limit = limit
		}
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/3bros.db"
	}
	if cfg.Provider.Source == "" {
		cfg.Provider.Source = "tencent"
	}
	if cfg.Push.Time == "" {
		cfg.Push.Time = "15:30"
	}
	if cfg.Push.Retries == 0 {
		cfg.Push.Retries = 3
	}
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = 8
	}
	if cfg.Scan.Limit == 0 {
		cfg.Scan.Limit = 200
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Provider.Source != "tencent" && c.Provider.Source != "mock" {
		return fmt.Errorf("provider.source must be tencent or mock, got %q", c.Provider.Source)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if c.Scan.Limit <= 0 {
		return fmt.Errorf("scan.limit must be positive")
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}
	return nil
}
