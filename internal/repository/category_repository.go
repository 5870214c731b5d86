package repository

import (
	"github.com/household-apps/todo-service/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// FindByID finds a category by household and id
func (r *GormCategoryRepository) FindByID(householdID, id string) (*models.Category, error) {
	var category models.Category
	err := r.db.
		Where("household_id = ? AND id = ?", householdID, id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListActive lists active categories ordered by sort order
func (r *GormCategoryRepository) ListActive(householdID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.
		Where("household_id = ? AND is_active = ?", householdID, true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ListActiveWithTaskCounts lists active categories together with their live
// task counts
func (r *GormCategoryRepository) ListActiveWithTaskCounts(householdID string) ([]CategoryWithTaskCount, error) {
	var rows []CategoryWithTaskCount
	err := r.db.Model(&models.Category{}).
		Select("categories.*, COUNT(tasks.id) AS task_count").
		Joins("LEFT JOIN tasks ON tasks.category_id = categories.id AND tasks.is_deleted = ?", false).
		Where("categories.household_id = ?", householdID).
		Where("categories.is_active = ?", true).
		Group("categories.id").
		Order("categories.sort_order ASC, categories.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive counts the household's active categories
func (r *GormCategoryRepository) CountActive(householdID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("household_id = ? AND is_active = ?", householdID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ActiveExists reports whether an active category with the given id exists in
// the household
func (r *GormCategoryRepository) ActiveExists(householdID, id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("household_id = ? AND id = ? AND is_active = ?", householdID, id, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveNameExists reports whether an active category named name exists in
// the household. excludeID skips one category so updates can keep their own
// name.
func (r *GormCategoryRepository) ActiveNameExists(householdID, name, excludeID string) (bool, error) {
	query := r.db.Model(&models.Category{}).
		Where("household_id = ? AND name = ? AND is_active = ?", householdID, name, true)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a category
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}
