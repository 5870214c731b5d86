package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/household-apps/todo-service/internal/dto"
	apierrors "github.com/household-apps/todo-service/internal/errors"
	"github.com/household-apps/todo-service/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns the household's active categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(householdID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.ToCategoryDTOs(categories)})
}

// ListCategoriesWithTaskCounts returns active categories with the number of
// live tasks filed under each
func (h *CategoryHandler) ListCategoriesWithTaskCounts(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategoriesWithTaskCounts(householdID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.ToCategoryWithTaskCountDTOs(categories)})
}

// GetCategory returns a specific category by ID
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(householdID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// GetCategoryCount returns how many active categories the household has
func (h *CategoryHandler) GetCategoryCount(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	count, err := h.categoryService.CountCategories(householdID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	type CreateCategoryRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
		SortOrder   int    `json:"sort_order"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(householdID, services.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// UpdateCategory applies a partial update to a category
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	type UpdateCategoryRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
		Icon        *string `json:"icon"`
		SortOrder   *int    `json:"sort_order"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(householdID, c.Param("id"), services.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory deactivates a category that no task references
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(householdID, c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
