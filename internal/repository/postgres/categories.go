package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

// CategoryRepository implements port.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCategoryRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewCategoryRepository(exec pgExecutor) *CategoryRepository {
	return &CategoryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CategoryRepository) selectCategories() squirrel.SelectBuilder {
	return r.builder.
		Select("id", "name", "description", "created_at").
		From("catalog.categories")
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	stmt, args, err := r.selectCategories().OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list categories sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a category by identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	stmt, args, err := r.selectCategories().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select category sql: %w", err)
	}

	var category domain.Category
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select category: %w", err)
	}

	return &category, nil
}

// Exists reports whether a category row exists.
func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("catalog.categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build category exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check category exists: %w", err)
	}

	return true, nil
}

// Create inserts a new category row and backfills the generated identifier.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("catalog.categories").
		Columns("name", "description", "created_at").
		Values(category.Name, category.Description, category.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert category sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&category.ID); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a category row.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	stmt, args, err := r.builder.Update("catalog.categories").
		Set("name", category.Name).
		Set("description", category.Description).
		Where(squirrel.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update category sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a category row unless products still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("catalog.products").
		Where(squirrel.Eq{"category_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build count products sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&count); err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if count > 0 {
		return repository.ErrCategoryInUse
	}

	stmt, args, err := r.builder.Delete("catalog.categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete category sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CategoryRepository = (*CategoryRepository)(nil)
