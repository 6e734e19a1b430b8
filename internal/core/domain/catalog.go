package domain

import "time"

// Product is a sellable item in the catalog. Stock is the number of units
// available for reservation and never goes negative.
type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       float64
	Stock       int
	IsActive    bool
	CategoryID  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups products for browsing and filtering.
type Category struct {
	ID          int64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *int64
	IsActive   *bool
	Search     string
}
