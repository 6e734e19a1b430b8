package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/usecase"
)

// StockHandler exposes the stock reservation endpoints.
type StockHandler struct {
	stock *usecase.StockService
}

// NewStockHandler builds a stock handler backed by the stock service.
func NewStockHandler(stock *usecase.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// RegisterRoutes attaches the reserve and release endpoints to the group.
func (h *StockHandler) RegisterRoutes(r *gin.RouterGroup, writeMiddlewares ...gin.HandlerFunc) {
	write := r.Group("")
	if len(writeMiddlewares) > 0 {
		write.Use(writeMiddlewares...)
	}
	write.POST(":id/stock/reserve", h.Reserve)
	write.POST(":id/stock/release", h.Release)
}

// Reserve atomically deducts quantity units from the product's stock.
// Returns 409 when the remaining stock cannot cover the request.
func (h *StockHandler) Reserve(c *gin.Context) {
	id, ok := parseStockIDParam(c)
	if !ok {
		return
	}

	var req StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewStockErrorResponse(c, "quantity must be a positive integer"))
		return
	}

	if err := h.stock.Reserve(c.Request.Context(), id, req.Quantity); err != nil {
		RespondWithMappedErrors(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
			{Err: usecase.ErrInsufficientStock, Status: http.StatusConflict, Message: "insufficient stock"},
			{Err: usecase.ErrQuantityInvalid, Status: http.StatusBadRequest, Message: "quantity must be a positive integer"},
		}, http.StatusInternalServerError, "failed to reserve stock")
		return
	}

	c.Status(http.StatusNoContent)
}

// Release returns quantity units to the product's stock.
func (h *StockHandler) Release(c *gin.Context) {
	id, ok := parseStockIDParam(c)
	if !ok {
		return
	}

	var req StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewStockErrorResponse(c, "quantity must be a positive integer"))
		return
	}

	if err := h.stock.Release(c.Request.Context(), id, req.Quantity); err != nil {
		RespondWithMappedErrors(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
			{Err: usecase.ErrQuantityInvalid, Status: http.StatusBadRequest, Message: "quantity must be a positive integer"},
		}, http.StatusInternalServerError, "failed to release stock")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseStockIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewStockErrorResponse(c, "invalid id"))
		return 0, false
	}
	return id, true
}
