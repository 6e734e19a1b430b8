package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/orderflow-catalog/internal/usecase"
)

// CategoryHandler exposes category CRUD endpoints.
type CategoryHandler struct {
	categories *usecase.CategoryService
}

// NewCategoryHandler builds a category handler backed by the category service.
func NewCategoryHandler(categories *usecase.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// RegisterRoutes attaches category endpoints to the group.
func (h *CategoryHandler) RegisterRoutes(r *gin.RouterGroup, writeMiddlewares ...gin.HandlerFunc) {
	r.GET("", h.List)
	r.GET("/:id", h.GetByID)

	write := r.Group("")
	if len(writeMiddlewares) > 0 {
		write.Use(writeMiddlewares...)
	}
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
}

// List returns all categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list categories"))
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, NewCategoryResponse(category))
	}

	c.JSON(http.StatusOK, responses)
}

// GetByID returns a single category.
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, err := h.categories.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
		}, http.StatusInternalServerError, "failed to load category")
		return
	}

	c.JSON(http.StatusOK, NewCategoryResponse(*category))
}

// Create inserts a new category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid category payload"))
		return
	}

	category, err := h.categories.Create(c.Request.Context(), usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCategoryNameRequired, Status: http.StatusBadRequest, Message: "category name is required"},
		}, http.StatusInternalServerError, "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, NewCategoryResponse(*category))
}

// Update replaces a category's name and description.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid category payload"))
		return
	}

	category, err := h.categories.Update(c.Request.Context(), id, usecase.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
			{Err: usecase.ErrCategoryNameRequired, Status: http.StatusBadRequest, Message: "category name is required"},
		}, http.StatusInternalServerError, "failed to update category")
		return
	}

	c.JSON(http.StatusOK, NewCategoryResponse(*category))
}

// Delete removes a category. Categories that still have products are rejected.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
			{Err: usecase.ErrCategoryInUse, Status: http.StatusConflict, Message: "category has products"},
		}, http.StatusInternalServerError, "failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}
