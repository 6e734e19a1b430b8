package port

import (
	"context"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
)

// EventPublisher publishes catalog events to the message bus.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, event domain.ProductCreatedEvent) error
	PublishProductDeleted(ctx context.Context, event domain.ProductDeletedEvent) error
	PublishStockReserved(ctx context.Context, event domain.StockReservedEvent) error
	PublishStockReleased(ctx context.Context, event domain.StockReleasedEvent) error
}
