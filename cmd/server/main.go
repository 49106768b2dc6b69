package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/intake/internal/config"
	"github.com/JonMunkholm/intake/internal/core"
	"github.com/JonMunkholm/intake/internal/logging"
	"github.com/JonMunkholm/intake/internal/schema"
	"github.com/JonMunkholm/intake/internal/store"
	"github.com/JonMunkholm/intake/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// run serves until ctx is cancelled or the listener fails. The store is
// closed on every return path.
func run(ctx context.Context, cfg *config.Config) error {
	registry, err := schema.Load(cfg.Schema.File)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	slog.Info("schemas registered", "count", registry.Len(), "types", registry.Keys())

	st, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err, "hint", core.FormatUserError(err))
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	service := core.NewService(registry, st, core.Options{
		MaxFileSize:        cfg.Upload.MaxFileSize,
		TempDir:            cfg.Upload.TempDir,
		QuotedFields:       cfg.Upload.QuotedFields,
		PreviewRows:        cfg.Upload.PreviewRows,
		ImportResponseRows: cfg.Upload.ImportResponseRows,
		MaxConcurrent:      cfg.Upload.MaxConcurrent,
		MaxWaitTime:        cfg.Upload.MaxWaitTime,
	})

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"quoted_fields", cfg.Upload.QuotedFields,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	server := web.NewServer(service, cfg)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	select {
	case err := <-serveErr:
		_ = server.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for uploads to complete", "active", status.Active)
		if err := service.WaitForUploads(shutdownCtx); err != nil {
			slog.Warn("uploads did not complete in time", "error", err)
		} else {
			slog.Info("all uploads completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
