package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/slotbook/server"
	"github.com/rustyeddy/slotbook/session"
	"github.com/rustyeddy/slotbook/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Long: `Start the HTTP server backing the dashboard: JSON endpoints for
every book operation, the position-size calculator, the daily report,
and a websocket feed pushing the full snapshot after every mutation.

Example:
  slotbook serve --config slotbook.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	hub := server.NewHub()
	go hub.Run()
	defer hub.Close()

	ctx := cmd.Context()
	sess, err := session.Load(ctx, st, store.DayKey(time.Now()), cfg.Trading.BookConfig(),
		session.WithJournal(j), session.WithNotifier(hub))
	if err != nil {
		return err
	}

	var opts []server.Option
	if tl, ok := j.(server.TradeLister); ok {
		opts = append(opts, server.WithTradeLister(tl))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.New(sess, hub, opts...).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard API listening", "addr", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
