package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/core/port"
	"github.com/arklim/orderflow-catalog/internal/repository"
)

var (
	// ErrCategoryNameRequired indicates the category name is missing or blank.
	ErrCategoryNameRequired = errors.New("category name is required")
	// ErrCategoryInUse indicates the category cannot be deleted while products reference it.
	ErrCategoryInUse = errors.New("category has products")
)

// CategoryInput captures the payload for creating or updating a category.
type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryService manages catalog categories.
type CategoryService struct {
	categories port.CategoryRepository
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories port.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Get retrieves a category by identifier.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Create validates the payload and inserts a new category.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCategoryNameRequired
	}

	category := domain.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}

	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, err
	}

	return &category, nil
}

// Update validates the payload and replaces the mutable fields of a category.
func (s *CategoryService) Update(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCategoryNameRequired
	}

	category := domain.Category{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}

	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a category unless products still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryInUse):
			return ErrCategoryInUse
		default:
			return err
		}
	}
	return nil
}
