package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// StockErrorResponse lists the reasons a stock operation was refused.
// The reserve and release endpoints always answer failures with this shape.
type StockErrorResponse struct {
	Errors  []string `json:"errors"`
	TraceID string   `json:"trace_id,omitempty"`
}

// NewStockErrorResponse creates a stock error response with trace ID from context
func NewStockErrorResponse(c *gin.Context, reasons ...string) StockErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return StockErrorResponse{
		Errors:  reasons,
		TraceID: traceIDStr,
	}
}

// HealthResponse reports liveness status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness of downstream dependencies.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ProductResponse describes a product returned by the API.
type ProductResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductResponse maps a domain product onto the API shape.
func NewProductResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CategoryID:  product.CategoryID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// CreateProductRequest defines the payload for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	CategoryID  int64   `json:"category_id" binding:"required"`
}

// UpdateProductRequest defines the payload for updating a product.
type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	IsActive    bool    `json:"is_active"`
	CategoryID  int64   `json:"category_id" binding:"required"`
}

// UpdateStockRequest sets an absolute stock quantity.
type UpdateStockRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// StockOperationRequest reserves or releases a number of units.
type StockOperationRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CategoryResponse describes a category returned by the API.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryResponse maps a domain category onto the API shape.
func NewCategoryResponse(category domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

// CategoryRequest defines the payload for creating or updating a category.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}
