package port

import (
	"context"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	SetStock(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists catalog categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category domain.Category) error
	Delete(ctx context.Context, id int64) error
}

// StockRepository mutates the stock counter of a product. Both operations
// are single atomic round trips; callers never hold locks around them.
type StockRepository interface {
	// Reserve decrements stock by quantity only if enough units remain.
	Reserve(ctx context.Context, productID int64, quantity int) error
	// Release increments stock by quantity unconditionally.
	Release(ctx context.Context, productID int64, quantity int) error
}
