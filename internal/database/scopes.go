package database

import (
	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/utils"
)

// Paginate applies a zero-based pagination window to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.Size)
	}
}
