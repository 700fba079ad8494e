package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/slotbook/config"
	"github.com/rustyeddy/slotbook/journal"
	"github.com/rustyeddy/slotbook/session"
	"github.com/rustyeddy/slotbook/store"
)

var rootCmd = &cobra.Command{
	Use:   "slotbook",
	Short: "A slot-based position book and capital-allocation engine for day trading",
	Long: `Slotbook manages a fixed number of trading slots funded from a shared
capital pool. Each slot is filled in discrete capital-capped portions with a
weighted-average cost basis and a fixed-dollar-risk stop price.

It provides tools for:
  - Filling, pricing, selling and stopping positions from the terminal
  - A stand-alone risk-based position-size calculator
  - A SQLite or CSV trade journal with Org-mode formatting
  - A JSON/websocket API for the dashboard UI

Complete documentation is available at https://github.com/rustyeddy/slotbook`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./slotbook.yaml", "path to config file")
}

// loadConfig reads the configured file, falling back to defaults when it
// does not exist so the tool works out of the box.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DBPath)
	case "redis":
		return store.NewRedis(cfg.Store.RedisURL)
	case "memory":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.SummaryFile)
	case "none":
		return journal.Nop{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}

// openSession wires the day's session from the config file. The caller
// must invoke the returned cleanup.
func openSession(ctx context.Context, opts ...session.Option) (*session.Session, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	j, err := openJournal(cfg)
	if err != nil {
		st.Close()
		return nil, nil, nil, fmt.Errorf("open journal: %w", err)
	}
	opts = append(opts, session.WithJournal(j))

	sess, err := session.Load(ctx, st, store.DayKey(time.Now()), cfg.Trading.BookConfig(), opts...)
	if err != nil {
		j.Close()
		st.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		j.Close()
		st.Close()
	}
	return sess, cfg, cleanup, nil
}
