package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ProductID int64            `json:"product_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, productID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		ProductID: productID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishProductCreated publishes catalog.product.created events.
func (p *EventPublisher) PublishProductCreated(ctx context.Context, event domain.ProductCreatedEvent) error {
	payload := struct {
		ProductID  int64     `json:"product_id"`
		Name       string    `json:"name"`
		Price      float64   `json:"price"`
		Stock      int       `json:"stock"`
		CategoryID int64     `json:"category_id"`
		CreatedAt  time.Time `json:"created_at"`
	}{
		ProductID:  event.ProductID,
		Name:       event.Name,
		Price:      event.Price,
		Stock:      event.Stock,
		CategoryID: event.CategoryID,
		CreatedAt:  event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "catalog.product.created", event.ProductID, event.CreatedAt, payload)
}

// PublishProductDeleted publishes catalog.product.deleted events.
func (p *EventPublisher) PublishProductDeleted(ctx context.Context, event domain.ProductDeletedEvent) error {
	payload := struct {
		ProductID int64     `json:"product_id"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		ProductID: event.ProductID,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "catalog.product.deleted", event.ProductID, event.DeletedAt, payload)
}

// PublishStockReserved publishes catalog.stock.reserved events.
func (p *EventPublisher) PublishStockReserved(ctx context.Context, event domain.StockReservedEvent) error {
	payload := struct {
		ProductID  int64     `json:"product_id"`
		Quantity   int       `json:"quantity"`
		ReservedAt time.Time `json:"reserved_at"`
	}{
		ProductID:  event.ProductID,
		Quantity:   event.Quantity,
		ReservedAt: event.ReservedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "catalog.stock.reserved", event.ProductID, event.ReservedAt, payload)
}

// PublishStockReleased publishes catalog.stock.released events.
func (p *EventPublisher) PublishStockReleased(ctx context.Context, event domain.StockReleasedEvent) error {
	payload := struct {
		ProductID  int64     `json:"product_id"`
		Quantity   int       `json:"quantity"`
		ReleasedAt time.Time `json:"released_at"`
	}{
		ProductID:  event.ProductID,
		Quantity:   event.Quantity,
		ReleasedAt: event.ReleasedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "catalog.stock.released", event.ProductID, event.ReleasedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
