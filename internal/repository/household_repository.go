package repository

import (
	"github.com/household-apps/todo-service/internal/models"
	"gorm.io/gorm"
)

// GormHouseholdRepository is a GORM implementation of HouseholdRepository
type GormHouseholdRepository struct {
	db *gorm.DB
}

// NewHouseholdRepository creates a new HouseholdRepository
func NewHouseholdRepository(db *gorm.DB) HouseholdRepository {
	return &GormHouseholdRepository{db: db}
}

// FindByID finds a household by ID
func (r *GormHouseholdRepository) FindByID(id string) (*models.Household, error) {
	var household models.Household
	if err := r.db.Where("id = ?", id).First(&household).Error; err != nil {
		return nil, err
	}
	return &household, nil
}

// ListActive lists all active households
func (r *GormHouseholdRepository) ListActive() ([]models.Household, error) {
	var households []models.Household
	if err := r.db.Where("is_active = ?", true).Find(&households).Error; err != nil {
		return nil, err
	}
	return households, nil
}
