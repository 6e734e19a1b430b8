package domain

import "time"

// ProductCreatedEvent represents the payload for catalog.product.created messages.
type ProductCreatedEvent struct {
	EventID    string
	ProductID  int64
	Name       string
	Price      float64
	Stock      int
	CategoryID int64
	CreatedAt  time.Time
}

// ProductDeletedEvent represents the payload for catalog.product.deleted messages.
type ProductDeletedEvent struct {
	EventID   string
	ProductID int64
	DeletedAt time.Time
}

// StockReservedEvent represents the payload for catalog.stock.reserved messages.
type StockReservedEvent struct {
	EventID    string
	ProductID  int64
	Quantity   int
	ReservedAt time.Time
}

// StockReleasedEvent represents the payload for catalog.stock.released messages.
type StockReleasedEvent struct {
	EventID    string
	ProductID  int64
	Quantity   int
	ReleasedAt time.Time
}
