package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

var (
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates fewer units remain than were requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrQuantityInvalid indicates the requested quantity is not a positive integer.
	ErrQuantityInvalid = errors.New("quantity must be a positive integer")
)

// StockService coordinates stock reservations and releases. The atomicity
// guarantee lives in the repository; this layer validates input, maps
// repository errors to business errors, and emits integration events.
type StockService struct {
	stock  port.StockRepository
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewStockService constructs a StockService.
func NewStockService(stock port.StockRepository, events port.EventPublisher, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StockService{
		stock:  stock,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *StockService) WithClock(now func() time.Time) *StockService {
	if now != nil {
		s.now = now
	}
	return s
}

// Reserve attempts to take quantity units of a product. It never retries: a
// failed reservation is a business outcome, not a transient fault.
func (s *StockService) Reserve(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrQuantityInvalid
	}

	if err := s.stock.Reserve(ctx, productID, quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrProductNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return ErrInsufficientStock
		default:
			return err
		}
	}

	if s.events != nil {
		event := domain.StockReservedEvent{
			EventID:    uuid.NewString(),
			ProductID:  productID,
			Quantity:   quantity,
			ReservedAt: s.now().UTC(),
		}
		if err := s.events.PublishStockReserved(ctx, event); err != nil {
			s.logger.Warn("failed to publish stock reserved event",
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Release returns quantity units of a product to stock. There is no ledger
// tying releases to prior reservations; callers own that correspondence.
func (s *StockService) Release(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return ErrQuantityInvalid
	}

	if err := s.stock.Release(ctx, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if s.events != nil {
		event := domain.StockReleasedEvent{
			EventID:    uuid.NewString(),
			ProductID:  productID,
			Quantity:   quantity,
			ReleasedAt: s.now().UTC(),
		}
		if err := s.events.PublishStockReleased(ctx, event); err != nil {
			s.logger.Warn("failed to publish stock released event",
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
		}
	}

	return nil
}
