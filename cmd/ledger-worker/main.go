package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger, err := cli.LoadAndValidateConfig(log.ComponentWorker)
	if err != nil {
		os.Exit(1)
	}
	logger.Info("Starting ledger-worker", "backend", cfg.DataBackend, "refresh_interval", cfg.RefreshInterval)

	backendCfg, err := backend.FromAppConfig(cfg, cli.Today())
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "type", backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Warn("Failed to close backend", "error", err)
		}
	}()

	snapshots, manager, err := cli.NewSnapshotService(cfg, result.Backend)
	if err != nil {
		logger.Error("Failed to create snapshot service", "error", err)
		os.Exit(1)
	}
	defer manager.Stop()

	refresher := worker.NewRefreshWorker(snapshots, result.Exporter, nil)

	var processor *services.SyncProcessor
	if result.Repo != nil && result.Mirror != nil {
		procCfg := services.DefaultSyncProcessorConfig()
		procCfg.PollInterval = cfg.SyncInterval
		procCfg.BatchSize = cfg.SyncBatchSize
		procCfg.MaxRetries = cfg.SyncMaxRetries
		processor = services.NewSyncProcessor(result.Repo, result.Mirror, result.Mirror, procCfg)
	} else {
		logger.Info("Skipping spreadsheet sync - no mirror configured")
	}

	ctx := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refresher.Run(gctx, cfg.RefreshInterval)
	})

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		g.Go(func() error {
			err := consumer.ConsumeRefresh(gctx, refresher.HandleRefresh)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	if processor != nil {
		if err := processor.Start(gctx); err != nil {
			logger.Error("Failed to start sync processor", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return processor.Stop(stopCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
