package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogsync/internal/api"
	"catalogsync/internal/config"
	"catalogsync/internal/export"
	"catalogsync/internal/logger"
	apperrors "catalogsync/pkg/errors"
)

func main() {
	// Square credentials are not needed to serve an existing artifact.
	cfg, err := config.Load(config.Options{})
	var cfgErr *apperrors.ConfigurationError
	if err != nil && !errors.As(err, &cfgErr) {
		log.Fatal("Failed to load configuration:", err)
	}

	newLogger := logger.New
	if cfg.Square.Environment == config.Production {
		newLogger = logger.NewJSON
	}
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfgErr != nil {
		logger.Warn("configuration incomplete, serving anyway: %v", cfgErr)
	}

	artifact, ok := export.FirstFile(export.ParseDestinations(cfg.Sync.Outputs, ""))
	if !ok {
		logger.Fatal("no file destination configured in OUTPUT_PATHS")
	}

	server := api.New(cfg, logger, artifact)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}
