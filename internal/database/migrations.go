package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes the model tags do not cover. Every list
// and count runs household-first, so each index leads with household_id.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and sorting
		{"tasks", "idx_tasks_household_deleted", "household_id, is_deleted"},
		{"tasks", "idx_tasks_household_status", "household_id, status"},
		{"tasks", "idx_tasks_household_due_date", "household_id, due_date"},
		{"tasks", "idx_tasks_household_created_at", "household_id, created_at"},
		{"tasks", "idx_tasks_household_assigned", "household_id, assigned_user_id"},

		// Category indexes for listing and name conflict checks
		{"categories", "idx_categories_household_active", "household_id, is_active"},
		{"categories", "idx_categories_household_name", "household_id, name"},
	}

	for _, idx := range indexes {
		exists, err := indexExists(db, idx.table, idx.name)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if exists {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

func indexExists(db *gorm.DB, table, name string) (bool, error) {
	var count int64
	switch db.Dialector.Name() {
	case "postgres":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, table, name).Count(&count).Error
		return count > 0, err
	case "mysql":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
		`, table, name).Count(&count).Error
		return count > 0, err
	default:
		// Other dialects (sqlite in tests) get by on the tag-declared indexes.
		return true, nil
	}
}
