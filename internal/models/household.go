package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Household is the tenant record. Tasks and categories carry its id as an
// opaque string; nothing enforces the reference, so rows may name households
// this table has never seen.
type Household struct {
	ID          string `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Settings    string `gorm:"type:text" json:"settings"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id.
func (h *Household) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
