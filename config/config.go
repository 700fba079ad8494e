// Package config loads and validates the operator's configuration file.
// YAML is tried first, then JSON, determined by content rather than
// extension so either works.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/money"
)

// Config is the complete slotbook configuration.
type Config struct {
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// TradingConfig holds the capital and risk parameters of the book.
// Money fields are plain floats in the file and converted to decimals
// at the engine boundary.
type TradingConfig struct {
	StartingCapital     float64 `json:"starting_capital" yaml:"starting_capital"`
	TotalPositions      int     `json:"total_positions" yaml:"total_positions"`
	PortionsPerPosition int     `json:"portions_per_position" yaml:"portions_per_position"`
	StopLossBudget      float64 `json:"stop_loss_budget" yaml:"stop_loss_budget"`
}

// BookConfig converts the file values to the engine's configuration.
func (t TradingConfig) BookConfig() book.Config {
	return book.Config{
		StartingCapital:     money.FromFloat(t.StartingCapital),
		TotalPositions:      t.TotalPositions,
		PortionsPerPosition: t.PortionsPerPosition,
		StopLossBudget:      money.FromFloat(t.StopLossBudget),
	}
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Type     string `json:"type" yaml:"type"` // "sqlite", "redis" or "memory"
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
}

// JournalConfig selects the trade journal backend.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	SummaryFile string `json:"summary_file,omitempty" yaml:"summary_file,omitempty"`
}

// ServerConfig configures the dashboard API.
type ServerConfig struct {
	Listen string `json:"listen" yaml:"listen"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Trading.StartingCapital <= 0 {
		return fmt.Errorf("trading.starting_capital must be positive")
	}
	if c.Trading.TotalPositions < 1 {
		return fmt.Errorf("trading.total_positions must be >= 1")
	}
	if c.Trading.PortionsPerPosition < 1 {
		return fmt.Errorf("trading.portions_per_position must be >= 1")
	}
	if c.Trading.StopLossBudget <= 0 {
		return fmt.Errorf("trading.stop_loss_budget must be positive")
	}

	switch c.Store.Type {
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path required for sqlite store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url required for redis store")
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'sqlite', 'redis' or 'memory'")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.SummaryFile == "" {
			return fmt.Errorf("journal trades_file and summary_file required for csv journal")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults: a 25k pool
// across 5 slots of 5 portions, 500 risked per position, everything
// persisted in local SQLite files.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			StartingCapital:     25000,
			TotalPositions:      5,
			PortionsPerPosition: 5,
			StopLossBudget:      500,
		},
		Store: StoreConfig{
			Type:   "sqlite",
			DBPath: "./slotbook.sqlite",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./slotbook-journal.sqlite",
		},
		Server: ServerConfig{
			Listen: ":8087",
		},
	}
}
