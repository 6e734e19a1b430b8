package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

var (
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNameRequired indicates the product name is missing or blank.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrPriceInvalid indicates the price is negative.
	ErrPriceInvalid = errors.New("price must not be negative")
	// ErrStockInvalid indicates the stock quantity is negative.
	ErrStockInvalid = errors.New("stock must not be negative")
)

// CreateProductInput captures the payload for creating a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
	CategoryID  int64
}

// UpdateProductInput captures the payload for updating a product.
type UpdateProductInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
	IsActive    bool
	CategoryID  int64
}

// ProductService manages catalog products.
type ProductService struct {
	products   port.ProductRepository
	categories port.CategoryRepository
	events     port.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewProductService constructs a ProductService.
func NewProductService(products port.ProductRepository, categories port.CategoryRepository, events port.EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProductService{
		products:   products,
		categories: categories,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns products matching the filter.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

// Get retrieves a product by identifier.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Create validates the payload and inserts a new product.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validateProductInput(input.Name, input.Price, input.Stock); err != nil {
		return nil, err
	}

	exists, err := s.categories.Exists(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	product := domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
		CategoryID:  input.CategoryID,
	}

	if err := s.products.Create(ctx, &product); err != nil {
		return nil, err
	}

	if s.events != nil {
		event := domain.ProductCreatedEvent{
			EventID:    uuid.NewString(),
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Stock:      product.Stock,
			CategoryID: product.CategoryID,
			CreatedAt:  product.CreatedAt,
		}
		if err := s.events.PublishProductCreated(ctx, event); err != nil {
			s.logger.Warn("failed to publish product created event",
				zap.Int64("product_id", product.ID),
				zap.Error(err),
			)
		}
	}

	return &product, nil
}

// Update validates the payload and replaces the mutable fields of a product.
func (s *ProductService) Update(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	if err := validateProductInput(input.Name, input.Price, input.Stock); err != nil {
		return nil, err
	}

	exists, err := s.categories.Exists(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	product := domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
		CategoryID:  input.CategoryID,
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

// SetStock overwrites the stock counter with an absolute quantity.
func (s *ProductService) SetStock(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		return ErrStockInvalid
	}

	if err := s.products.SetStock(ctx, id, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	return nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if s.events != nil {
		event := domain.ProductDeletedEvent{
			EventID:   uuid.NewString(),
			ProductID: id,
			DeletedAt: s.now().UTC(),
		}
		if err := s.events.PublishProductDeleted(ctx, event); err != nil {
			s.logger.Warn("failed to publish product deleted event",
				zap.Int64("product_id", id),
				zap.Error(err),
			)
		}
	}

	return nil
}

func validateProductInput(name string, price float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return ErrProductNameRequired
	}
	if price < 0 {
		return ErrPriceInvalid
	}
	if stock < 0 {
		return ErrStockInvalid
	}
	return nil
}
