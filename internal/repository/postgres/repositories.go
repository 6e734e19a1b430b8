package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Products   *ProductRepository
	Categories *CategoryRepository
	Stock      *StockRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Products:   NewProductRepository(pool),
		Categories: NewCategoryRepository(pool),
		Stock:      NewStockRepository(pool),
	}
}
