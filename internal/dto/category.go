package dto

import (
	"time"

	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/repository"
)

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryWithTaskCountDTO represents a category plus its live task count
type CategoryWithTaskCountDTO struct {
	CategoryDTO
	TaskCount int64 `json:"task_count"`
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		HouseholdID: category.HouseholdID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		Icon:        category.Icon,
		SortOrder:   category.SortOrder,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// ToCategoryDTOs converts a slice of categories
func ToCategoryDTOs(categories []models.Category) []CategoryDTO {
	items := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		items[i] = ToCategoryDTO(category)
	}
	return items
}

// ToCategoryWithTaskCountDTOs converts categories paired with task counts
func ToCategoryWithTaskCountDTOs(rows []repository.CategoryWithTaskCount) []CategoryWithTaskCountDTO {
	items := make([]CategoryWithTaskCountDTO, len(rows))
	for i, row := range rows {
		items[i] = CategoryWithTaskCountDTO{
			CategoryDTO: ToCategoryDTO(row.Category),
			TaskCount:   row.TaskCount,
		}
	}
	return items
}
