package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	"catalogsync/internal/syncer"
	"catalogsync/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	defer logger.Sync()

	if !cfg.Kafka.Enabled() {
		logger.Fatal("KAFKA_BROKERS is required for the worker")
	}
	for _, warning := range cfg.Warnings {
		logger.Warn("%s", warning)
	}

	run := func(ctx context.Context) error {
		runID := uuid.NewString()
		runLog := logger.With("run_id", runID)
		deps := syncer.DefaultDeps(cfg, runID, runLog)
		defer deps.Publisher.Close()

		report, err := syncer.New(cfg, runID, deps, runLog).Run(ctx)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		runLog.Info("exported %d item(s) to %d destination(s)", report.Export.Meta.ItemCount, len(report.Results))
		return nil
	}

	w := worker.New(cfg, logger, run)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		logger.Error("worker: %v", err)
	}

	logger.Info("Shutting down worker...")
	if err := w.Stop(); err != nil {
		logger.Error("close reader: %v", err)
	}
}
