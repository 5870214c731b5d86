package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/cache"
	"github.com/household-apps/todo-service/internal/constants"
	apperrors "github.com/household-apps/todo-service/internal/errors"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	taskRepo     repository.TaskRepository
	store        cache.Store
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, taskRepo repository.TaskRepository, store cache.Store) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		taskRepo:     taskRepo,
		store:        store,
	}
}

// CreateCategoryInput represents input for creating a category
type CreateCategoryInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
	SortOrder   int
}

// UpdateCategoryInput represents input for updating a category. Nil fields
// stay unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	SortOrder   *int
}

// ListCategories returns the household's active categories in sort order
func (s *CategoryService) ListCategories(householdID string) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListActive(householdID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list categories: %w", err))
	}
	return categories, nil
}

// ListCategoriesWithTaskCounts returns the household's active categories
// together with their live task counts
func (s *CategoryService) ListCategoriesWithTaskCounts(householdID string) ([]repository.CategoryWithTaskCount, error) {
	rows, err := s.categoryRepo.ListActiveWithTaskCounts(householdID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list categories with task counts: %w", err))
	}
	return rows, nil
}

// GetCategory returns a category by id within the caller's household. Cache
// hits for another household fall through to the store.
func (s *CategoryService) GetCategory(householdID, id string) (*models.Category, error) {
	if v, ok := s.store.Get(cache.CategoryKey(id)); ok {
		if cached, ok := v.(models.Category); ok && cached.HouseholdID == householdID {
			category := cached
			return &category, nil
		}
	}

	category, err := s.findCategory(householdID, id)
	if err != nil {
		return nil, err
	}

	s.store.Set(cache.CategoryKey(id), *category)
	return category, nil
}

// CountCategories returns how many active categories the household has
func (s *CategoryService) CountCategories(householdID string) (int64, error) {
	count, err := s.categoryRepo.CountActive(householdID)
	if err != nil {
		return 0, apperrors.StoreUnavailable(fmt.Errorf("failed to count categories: %w", err))
	}
	return count, nil
}

// CreateCategory creates a new category. The name must be unique among the
// household's active categories.
func (s *CategoryService) CreateCategory(householdID string, input CreateCategoryInput) (*models.Category, error) {
	if err := validateCategoryName(input.Name); err != nil {
		return nil, err
	}
	if err := validateCategoryFields(input.Description, input.Color, input.Icon); err != nil {
		return nil, err
	}

	taken, err := s.categoryRepo.ActiveNameExists(householdID, input.Name, "")
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to check category name: %w", err))
	}
	if taken {
		return nil, apperrors.Conflict("category name %q already in use", input.Name)
	}

	category := &models.Category{
		HouseholdID: householdID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to create category: %w", err))
	}

	s.store.Delete(cache.CategoryKey(category.ID))
	return category, nil
}

// UpdateCategory applies a partial update to an existing category
func (s *CategoryService) UpdateCategory(householdID, id string, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.findCategory(householdID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != category.Name {
		if err := validateCategoryName(*input.Name); err != nil {
			return nil, err
		}
		taken, err := s.categoryRepo.ActiveNameExists(householdID, *input.Name, category.ID)
		if err != nil {
			return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to check category name: %w", err))
		}
		if taken {
			return nil, apperrors.Conflict("category name %q already in use", *input.Name)
		}
		category.Name = *input.Name
	}
	if input.Description != nil {
		if utf8.RuneCountInString(*input.Description) > constants.MaxCategoryDescriptionLength {
			return nil, apperrors.InvalidArgument("description must be at most %d characters", constants.MaxCategoryDescriptionLength)
		}
		category.Description = *input.Description
	}
	if input.Color != nil {
		if err := validateColor(*input.Color); err != nil {
			return nil, err
		}
		category.Color = *input.Color
	}
	if input.Icon != nil {
		if utf8.RuneCountInString(*input.Icon) > constants.MaxCategoryIconLength {
			return nil, apperrors.InvalidArgument("icon must be at most %d characters", constants.MaxCategoryIconLength)
		}
		category.Icon = *input.Icon
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to update category: %w", err))
	}

	s.store.Delete(cache.CategoryKey(category.ID))
	return category, nil
}

// DeleteCategory logically deletes a category. The delete is rejected while
// any task row still references it, forcing reassignment first.
func (s *CategoryService) DeleteCategory(householdID, id string) error {
	category, err := s.findCategory(householdID, id)
	if err != nil {
		return err
	}

	count, err := s.taskRepo.CountByCategory(householdID, id)
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to count category tasks: %w", err))
	}
	if count > 0 {
		return apperrors.Conflict("cannot delete category with %d associated tasks", count)
	}

	category.IsActive = false

	if err := s.categoryRepo.Update(category); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to delete category: %w", err))
	}

	s.store.Delete(cache.CategoryKey(category.ID))
	return nil
}

// findCategory loads a category and classifies the failure modes
func (s *CategoryService) findCategory(householdID, id string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(householdID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to find category: %w", err))
	}
	return category, nil
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.InvalidArgument("name is required")
	}
	if utf8.RuneCountInString(name) > constants.MaxCategoryNameLength {
		return apperrors.InvalidArgument("name must be at most %d characters", constants.MaxCategoryNameLength)
	}
	return nil
}

func validateCategoryFields(description, color, icon string) error {
	if utf8.RuneCountInString(description) > constants.MaxCategoryDescriptionLength {
		return apperrors.InvalidArgument("description must be at most %d characters", constants.MaxCategoryDescriptionLength)
	}
	if err := validateColor(color); err != nil {
		return err
	}
	if utf8.RuneCountInString(icon) > constants.MaxCategoryIconLength {
		return apperrors.InvalidArgument("icon must be at most %d characters", constants.MaxCategoryIconLength)
	}
	return nil
}

// validateColor accepts an empty color or a #RRGGBB hex code
func validateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorPattern.MatchString(color) {
		return apperrors.InvalidArgument("color must be a hex code like #A1B2C3")
	}
	return nil
}
