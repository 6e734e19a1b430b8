package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, productID int64, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Int64("product_id", productID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishProductCreated logs catalog.product.created events.
func (p *StubPublisher) PublishProductCreated(_ context.Context, event domain.ProductCreatedEvent) error {
	payload := map[string]any{
		"product_id":  event.ProductID,
		"name":        event.Name,
		"price":       event.Price,
		"stock":       event.Stock,
		"category_id": event.CategoryID,
		"created_at":  event.CreatedAt,
	}
	p.logEvent("catalog.product.created", event.ProductID, event.CreatedAt, payload)
	return nil
}

// PublishProductDeleted logs catalog.product.deleted events.
func (p *StubPublisher) PublishProductDeleted(_ context.Context, event domain.ProductDeletedEvent) error {
	payload := map[string]any{
		"product_id": event.ProductID,
		"deleted_at": event.DeletedAt,
	}
	p.logEvent("catalog.product.deleted", event.ProductID, event.DeletedAt, payload)
	return nil
}

// PublishStockReserved logs catalog.stock.reserved events.
func (p *StubPublisher) PublishStockReserved(_ context.Context, event domain.StockReservedEvent) error {
	payload := map[string]any{
		"product_id":  event.ProductID,
		"quantity":    event.Quantity,
		"reserved_at": event.ReservedAt,
	}
	p.logEvent("catalog.stock.reserved", event.ProductID, event.ReservedAt, payload)
	return nil
}

// PublishStockReleased logs catalog.stock.released events.
func (p *StubPublisher) PublishStockReleased(_ context.Context, event domain.StockReleasedEvent) error {
	payload := map[string]any{
		"product_id":  event.ProductID,
		"quantity":    event.Quantity,
		"released_at": event.ReleasedAt,
	}
	p.logEvent("catalog.stock.released", event.ProductID, event.ReleasedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
