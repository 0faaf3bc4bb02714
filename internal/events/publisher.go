package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"catalogsync/internal/config"
)

const (
	TypeCatalogExported = "catalog.exported"
	TypeSyncRequested   = "catalog.sync_requested"
)

// Event announces a published catalog so storefront builds can react.
type Event struct {
	Type         string    `json:"type"`
	RunID        string    `json:"runId"`
	LocationID   string    `json:"locationId"`
	Environment  string    `json:"environment"`
	ExportedAt   time.Time `json:"exportedAt"`
	ItemCount    int       `json:"itemCount"`
	Destinations []string  `json:"destinations"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New returns a kafka publisher when brokers are configured, and a no-op
// publisher otherwise.
func New(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		return Nop{}
	}
	return NewKafkaPublisher(cfg)
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish keys messages by location so events for one storefront stay
// ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.LocationID),
		Value: value,
		Time:  event.ExportedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }
