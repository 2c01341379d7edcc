package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conorfennell/wordmill/internal/config"
	"github.com/conorfennell/wordmill/internal/storage"
	syncsrc "github.com/conorfennell/wordmill/internal/sync"
	"github.com/conorfennell/wordmill/internal/web"
)

func main() {
	flags := config.Flags()
	addSource := flags.String("add-source", "", "Register a wordlist source (local directory or git URL) and exit")
	runSync := flags.Bool("sync", false, "Reconcile all sources once and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	if err := cfg.EnsureDirs(); err != nil {
		slog.Error("failed to prepare directories", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB)

	switch {
	case *addSource != "":
		sourceType := syncsrc.DetectSourceType(*addSource)
		id, err := db.InsertSource(*addSource, sourceType)
		if err != nil {
			slog.Error("failed to add source", "path", *addSource, "error", err)
			os.Exit(1)
		}
		slog.Info("source added", "id", id, "type", sourceType, "path", *addSource)

	case *runSync:
		if err := syncsrc.RunAll(db, cfg.Repos, time.Now()); err != nil {
			slog.Error("sync failed", "error", err)
			os.Exit(1)
		}

	default:
		if err := serve(cfg, db); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}
}

func serve(cfg *config.Config, db *storage.DB) error {
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewServer(db, cfg.Repos, cfg.Quota),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
