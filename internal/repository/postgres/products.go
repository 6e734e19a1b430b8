package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository implements port.ProductRepository using PostgreSQL.
type ProductRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	return &ProductRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProductRepository) selectProducts() squirrel.SelectBuilder {
	return r.builder.
		Select(
			"id",
			"name",
			"description",
			"price",
			"stock",
			"is_active",
			"category_id",
			"created_at",
			"updated_at",
		).
		From("catalog.products")
}

// List returns products matching the filter ordered by identifier.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := r.selectProducts().OrderBy("id")

	if filter.CategoryID != nil {
		query = query.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a product by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	stmt, args, err := r.selectProducts().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// Create inserts a new product row and backfills the generated identifier.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}

	stmt, args, err := r.builder.Insert("catalog.products").
		Columns(
			"name",
			"description",
			"price",
			"stock",
			"is_active",
			"category_id",
			"created_at",
			"updated_at",
		).
		Values(
			product.Name,
			product.Description,
			product.Price,
			product.Stock,
			product.IsActive,
			product.CategoryID,
			product.CreatedAt,
			product.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&product.ID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a product row.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	stmt, args, err := r.builder.Update("catalog.products").
		Set("name", product.Name).
		Set("description", product.Description).
		Set("price", product.Price).
		Set("stock", product.Stock).
		Set("is_active", product.IsActive).
		Set("category_id", product.CategoryID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetStock overwrites the stock counter with an absolute quantity.
func (r *ProductRepository) SetStock(ctx context.Context, id int64, quantity int) error {
	stmt, args, err := r.builder.Update("catalog.products").
		Set("stock", quantity).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set stock sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a product row.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("catalog.products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete product sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.IsActive,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}

	return product, nil
}

var _ port.ProductRepository = (*ProductRepository)(nil)
