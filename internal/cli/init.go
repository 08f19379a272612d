// Package cli provides common initialization for cmd/ledger and
// cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/cache"
	"ledger/internal/categorize"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/forecast"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. An unparsable level falls back to info.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: component,
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging and validates
// the result.
func LoadAndValidateConfig(component string) (*config.Config, *log.Logger, error) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		return nil, logger, err
	}
	return cfg, logger, nil
}

// ForecastParams turns the forecast settings of cfg into pipeline
// parameters, loading the keyword table when one is configured.
func ForecastParams(cfg *config.Config) (forecast.Params, error) {
	table, err := categorize.Load(cfg.CategoriesFile)
	if err != nil {
		return forecast.Params{}, err
	}

	p := forecast.DefaultParams()
	p.StartingBalance = cfg.StartingBalance
	p.WindowDays = cfg.WindowDays
	p.HorizonDays = cfg.HorizonDays
	p.InsightCategory = cfg.InsightCategory
	p.RecentDays = cfg.InsightRecentDays
	p.BaselineDays = cfg.InsightBaselineDays
	p.Categorizer = table
	p.Formatter = core.CurrencyFormatter{Symbol: cfg.CurrencySymbol, Decimals: int32(cfg.CurrencyDecimals)}

	if err := p.Validate(); err != nil {
		return forecast.Params{}, err
	}
	return p, nil
}

// NewSnapshotService wires a cached snapshot service over source. The
// returned manager expires cache entries until stopped.
func NewSnapshotService(cfg *config.Config, source sheets.TransactionLister) (*services.SnapshotService, *cache.Manager, error) {
	params, err := ForecastParams(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("forecast parameters: %w", err)
	}

	snapshots := cache.NewLRUCache[forecast.Snapshot](cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL)
	manager := cache.NewManager()
	manager.Register(snapshots)
	manager.StartCleanup(cfg.SnapshotCacheTTL)

	svc, err := services.NewSnapshotService(source, params, snapshots)
	if err != nil {
		manager.Stop()
		return nil, nil, err
	}
	return svc, manager, nil
}

// Today returns the current calendar date in the local time zone.
func Today() core.Date {
	return core.DateOf(time.Now())
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. On a
// signal, cleanup runs with a deadline of timeout before the context is
// cancelled.
func GracefulShutdown(parent context.Context, logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) context.Context {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			return
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
		cancel()
	}()

	return ctx
}
