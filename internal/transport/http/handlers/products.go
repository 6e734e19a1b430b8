package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/core/domain"
	"github.com/arklim/orderflow-catalog/internal/usecase"
)

// ProductHandler exposes product CRUD endpoints.
type ProductHandler struct {
	products *usecase.ProductService
}

// NewProductHandler builds a product handler backed by the product service.
func NewProductHandler(products *usecase.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes attaches product endpoints to the group. Write endpoints
// receive the extra middleware chain (scope enforcement).
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup, writeMiddlewares ...gin.HandlerFunc) {
	r.GET("", h.List)
	r.GET("/:id", h.GetByID)

	write := r.Group("")
	if len(writeMiddlewares) > 0 {
		write.Use(writeMiddlewares...)
	}
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.PATCH("/:id/stock", h.UpdateStock)
	write.DELETE("/:id", h.Delete)
}

// List returns products, optionally filtered by category, active flag, and search term.
func (h *ProductHandler) List(c *gin.Context) {
	var filter domain.ProductFilter

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid is_active"))
			return
		}
		filter.IsActive = &active
	}

	filter.Search = c.Query("search")

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list products"))
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, NewProductResponse(product))
	}

	c.JSON(http.StatusOK, responses)
}

// GetByID returns a single product.
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
		}, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, NewProductResponse(*product))
}

// Create inserts a new product.
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.Create(c.Request.Context(), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCategoryNotFound, Status: http.StatusBadRequest, Message: "category not found"},
			{Err: usecase.ErrProductNameRequired, Status: http.StatusBadRequest, Message: "product name is required"},
			{Err: usecase.ErrPriceInvalid, Status: http.StatusBadRequest, Message: "price must not be negative"},
			{Err: usecase.ErrStockInvalid, Status: http.StatusBadRequest, Message: "stock must not be negative"},
		}, http.StatusInternalServerError, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, NewProductResponse(*product))
}

// Update replaces a product's mutable fields.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
			{Err: usecase.ErrCategoryNotFound, Status: http.StatusBadRequest, Message: "category not found"},
			{Err: usecase.ErrProductNameRequired, Status: http.StatusBadRequest, Message: "product name is required"},
			{Err: usecase.ErrPriceInvalid, Status: http.StatusBadRequest, Message: "price must not be negative"},
			{Err: usecase.ErrStockInvalid, Status: http.StatusBadRequest, Message: "stock must not be negative"},
		}, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, NewProductResponse(*product))
}

// UpdateStock overwrites the stock counter with an absolute quantity.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid stock payload"))
		return
	}

	if err := h.products.SetStock(c.Request.Context(), id, req.Quantity); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
			{Err: usecase.ErrStockInvalid, Status: http.StatusBadRequest, Message: "stock must not be negative"},
		}, http.StatusInternalServerError, "failed to update stock")
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
		}, http.StatusInternalServerError, "failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid id"))
		return 0, false
	}
	return id, true
}
