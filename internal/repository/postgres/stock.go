package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

// StockRepository implements port.StockRepository using PostgreSQL.
//
// Both mutations are single conditional statements; the database serializes
// concurrent writers against the same row, so stock never goes negative
// without any application-level locking.
type StockRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	logger  *zap.Logger
	now     func() time.Time
}

// NewStockRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewStockRepository(exec pgExecutor) *StockRepository {
	return &StockRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// WithLogger attaches a structured logger for operational diagnostics.
func (r *StockRepository) WithLogger(logger *zap.Logger) *StockRepository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithClock allows injection of a custom clock (primarily for testing).
func (r *StockRepository) WithClock(now func() time.Time) *StockRepository {
	if now != nil {
		r.now = now
	}
	return r
}

// Reserve decrements stock by quantity only if enough units remain.
// The check and the mutation happen in one statement, so concurrent
// reservations cannot oversell.
func (r *StockRepository) Reserve(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	stmt, args, err := r.builder.Update("catalog.products").
		Set("stock", squirrel.Expr("stock - ?", quantity)).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Expr("stock >= ?", quantity)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reserve stock sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	if tag.RowsAffected() > 0 {
		r.logger.Info("stock reserved",
			zap.Int64("product_id", productID),
			zap.Int("quantity", quantity),
		)
		return nil
	}

	// The conditional update matched nothing. A second read distinguishes a
	// missing product from insufficient stock; it only affects the error
	// wording, never the counter.
	exists, err := r.productExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		r.logger.Warn("product not found for stock reservation", zap.Int64("product_id", productID))
		return repository.ErrNotFound
	}

	r.logger.Warn("insufficient stock",
		zap.Int64("product_id", productID),
		zap.Int("requested", quantity),
	)
	return repository.ErrInsufficientStock
}

// Release increments stock by quantity unconditionally. Callers own the
// responsibility of not releasing more than was reserved.
func (r *StockRepository) Release(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	stmt, args, err := r.builder.Update("catalog.products").
		Set("stock", squirrel.Expr("stock + ?", quantity)).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release stock sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn("product not found for stock release", zap.Int64("product_id", productID))
		return repository.ErrNotFound
	}

	r.logger.Info("stock released",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return nil
}

func (r *StockRepository) productExists(ctx context.Context, productID int64) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("catalog.products").
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build product exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check product exists: %w", err)
	}

	return true, nil
}

var _ port.StockRepository = (*StockRepository)(nil)
