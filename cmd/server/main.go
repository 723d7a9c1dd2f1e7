package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/hsncheck/internal/config"
	"github.com/JonMunkholm/hsncheck/internal/core"
	_ "github.com/JonMunkholm/hsncheck/internal/core/tables" // Register HSN and SAC tables
	"github.com/JonMunkholm/hsncheck/internal/logging"
	"github.com/JonMunkholm/hsncheck/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"workbook", cfg.Data.WorkbookPath,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(core.ServiceConfig{
		Suggestions:          cfg.Validator.Suggestions,
		Cutoff:               cfg.Validator.Cutoff,
		Workers:              cfg.Validator.Workers,
		InvalidLogCapacity:   cfg.Validator.InvalidLogCapacity,
		MaxConcurrentUploads: cfg.Upload.MaxConcurrent,
		MaxUploadWait:        cfg.Upload.MaxWaitTime,
		UploadTimeout:        cfg.Upload.Timeout,
	})

	// Load the default reference data
	ctx := context.Background()
	tables, err := core.LoadWorkbookFile(cfg.Data.WorkbookPath)
	if err != nil {
		if !cfg.Data.AllowEmpty {
			slog.Error("failed to load reference data", "path", cfg.Data.WorkbookPath, "error", err)
			os.Exit(1)
		}
		slog.Warn("starting with empty reference data", "path", cfg.Data.WorkbookPath, "error", err)
	} else {
		service.Load(ctx, tables, cfg.Data.WorkbookPath)
	}

	slog.Info("tables registered", "count", core.TableCount())

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if active := service.Dashboard().Uploads.Active; active > 0 {
			slog.Info("waiting for uploads to complete", "active", active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
