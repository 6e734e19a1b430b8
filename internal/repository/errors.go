package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrInsufficientStock indicates the conditional stock decrement matched no row
	// because fewer units remain than were requested.
	ErrInsufficientStock = errors.New("repository: insufficient stock")
	// ErrCategoryInUse indicates a category still has products referencing it.
	ErrCategoryInUse = errors.New("repository: category has products")
)
