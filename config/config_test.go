package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Trading.StartingCapital = 0 }},
		{"zero positions", func(c *Config) { c.Trading.TotalPositions = 0 }},
		{"zero portions", func(c *Config) { c.Trading.PortionsPerPosition = 0 }},
		{"zero stop budget", func(c *Config) { c.Trading.StopLossBudget = 0 }},
		{"unknown store", func(c *Config) { c.Store.Type = "postgres" }},
		{"sqlite store without path", func(c *Config) { c.Store.DBPath = "" }},
		{"redis store without url", func(c *Config) { c.Store = StoreConfig{Type: "redis"} }},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv journal without files", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"missing listen", func(c *Config) { c.Server.Listen = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mod(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "slotbook.yaml")
	cfg := Default()
	cfg.Trading.StartingCapital = 50000

	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, got.Trading.StartingCapital)
	assert.Equal(t, "sqlite", got.Store.Type)
}

func TestSaveAndLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "slotbook.json")
	require.NoError(t, Default().SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Trading.TotalPositions)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading:\n  starting_capital: -1\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestBookConfigConversion(t *testing.T) {
	t.Parallel()

	bc := Default().Trading.BookConfig()
	require.NoError(t, bc.Validate())
	assert.Equal(t, 5, bc.TotalPositions)
	assert.Equal(t, "1000", bc.CapitalPerPortion().String())
}
