package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/proker/internal/config"
	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/logging"
	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/store/postgres"
	"github.com/JonMunkholm/proker/internal/store/s3"
	"github.com/JonMunkholm/proker/internal/store/sqlite"
	"github.com/JonMunkholm/proker/internal/telemetry"
	"github.com/JonMunkholm/proker/internal/web"
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
	slog.Info("configuration loaded", "config", cfg.String())

	registry, err := loadRegistry(cfg)
	if err != nil {
		slog.Error("failed to load sheets", "error", err)
		os.Exit(1)
	}
	slog.Info("sheets registered", "count", registry.Len())

	snapshots, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open snapshot store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	metrics, shutdownMetrics, err := initTelemetry(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownMetrics(ctx); err != nil {
			slog.Warn("telemetry shutdown error", "error", err)
		}
	}()

	fetcher := core.NewHTTPFetcher(cfg.Sheets.BaseURL, cfg.Sheets.FetchTimeout)
	fetcher.MaxBodySize = cfg.Sheets.MaxBodySize

	service := core.NewService(registry, fetcher, core.ServiceOptions{
		MaxConcurrentFetches: cfg.Sheets.MaxConcurrent,
		FetchWait:            cfg.Sheets.MaxWaitTime,
		Snapshots:            snapshots,
		Metrics:              metrics,
	})

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartRefreshScheduler(jobCtx, core.RefreshConfig{
		Interval:     cfg.Sheets.RefreshInterval,
		SnapshotKeep: cfg.Store.SnapshotKeep,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.FetchLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for sheet downloads to finish", "active", status.Active)
			if err := service.WaitForFetches(shutdownCtx); err != nil {
				slog.Warn("sheet downloads did not finish in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		return
	}
	slog.Info("server stopped")
}

// loadRegistry builds the tab list from SHEETS_FILE, or the built-in tabs
// when no file is configured.
func loadRegistry(cfg *config.Config) (*core.Registry, error) {
	entries, err := config.LoadSheets(cfg.Sheets.File)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return core.NewRegistry(core.DefaultSheets...)
	}

	sheets := make([]core.Sheet, len(entries))
	for i, e := range entries {
		sheets[i] = core.Sheet{Name: e.Name, GID: e.GID}
	}
	return core.NewRegistry(sheets...)
}

// openStore opens the configured snapshot backend. The "none" driver
// returns a nil store, which disables snapshots.
func openStore(ctx context.Context, cfg *config.Config) (store.SnapshotStore, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("snapshot store ready", "driver", config.DriverSQLite, "path", cfg.Store.SQLitePath)
		return s, nil

	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Store.DatabaseURL, postgres.Options{
			MaxConns: int32(cfg.Store.MaxConns),
		})
		if err != nil {
			return nil, err
		}
		slog.Info("snapshot store ready", "driver", config.DriverPostgres)
		return s, nil

	case config.DriverS3:
		s, err := s3.New(ctx, s3.Options{
			Bucket:   cfg.Store.S3Bucket,
			Region:   cfg.Store.S3Region,
			Prefix:   cfg.Store.S3Prefix,
			Endpoint: cfg.Store.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("snapshot store ready", "driver", config.DriverS3, "bucket", cfg.Store.S3Bucket, "prefix", cfg.Store.S3Prefix)
		return s, nil

	case config.DriverMemory:
		slog.Info("snapshot store ready", "driver", config.DriverMemory)
		return store.NewMemory(), nil

	case config.DriverNone:
		slog.Info("snapshot store disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initTelemetry starts the OTLP metric exporter when enabled. Otherwise it
// returns no-op instruments.
func initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Instruments, func(context.Context) error, error) {
	if !cfg.Telemetry.Enabled {
		return telemetry.NewNoop(), func(context.Context) error { return nil }, nil
	}

	inst, shutdown, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.ExportInterval)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("telemetry enabled", "service", cfg.Telemetry.ServiceName, "interval", cfg.Telemetry.ExportInterval)
	return inst, shutdown, nil
}
