package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"catalogsync/internal/config"
	"catalogsync/internal/events"
	"catalogsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of kafka.Reader the worker consumes.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RunFunc performs one full catalog sync.
type RunFunc func(ctx context.Context) error

// Worker runs a catalog sync for every sync request published on the
// events topic. Requests older than the start of the last completed run
// are already covered by it and only get committed.
type Worker struct {
	config  *config.Config
	logger  *logger.Logger
	reader  MessageReader
	run     RunFunc
	now     func() time.Time
	lastRun time.Time
}

func New(cfg *config.Config, logger *logger.Logger, run RunFunc) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  "catalogsync-worker",
		Topic:    cfg.Kafka.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return NewWithReader(cfg, logger, reader, run)
}

func NewWithReader(cfg *config.Config, logger *logger.Logger, reader MessageReader, run RunFunc) *Worker {
	return &Worker{
		config: cfg,
		logger: logger,
		reader: reader,
		run:    run,
		now:    time.Now,
	}
}

// Start consumes until ctx is cancelled. A failed sync leaves its message
// uncommitted so the request is retried after a restart.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Worker started, listening on %s...", w.config.Kafka.Topic)

	for {
		message, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		if err := w.Handle(ctx, message); err != nil {
			w.logger.Error("sync request at offset %d failed: %v", message.Offset, err)
			continue
		}

		if err := w.reader.CommitMessages(ctx, message); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Failed to commit offset %d: %v", message.Offset, err)
		}
	}
}

// Handle runs a sync when the message is a request for this location.
// Other messages on the topic, including the worker's own export events,
// are skipped.
func (w *Worker) Handle(ctx context.Context, message kafka.Message) error {
	var event events.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		w.logger.Warn("skipping malformed message at offset %d: %v", message.Offset, err)
		return nil
	}

	if event.Type != events.TypeSyncRequested {
		w.logger.Debug("skipping %s event", event.Type)
		return nil
	}
	if event.LocationID != "" && event.LocationID != w.config.Square.LocationID {
		w.logger.Debug("skipping sync request for location %s", event.LocationID)
		return nil
	}
	if !w.lastRun.IsZero() && message.Time.Before(w.lastRun) {
		w.logger.Debug("sync request at offset %d already covered", message.Offset)
		return nil
	}

	started := w.now()
	if err := w.run(ctx); err != nil {
		return err
	}
	w.lastRun = started
	return nil
}

func (w *Worker) Stop() error {
	w.logger.Info("Stopping worker...")
	return w.reader.Close()
}
