package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/database"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/utils"
)

// priorityRank orders priorities by severity instead of alphabetically.
const priorityRank = "CASE tasks.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'urgent' THEN 4 ELSE 0 END"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// live scopes the query to non-deleted tasks of one household. Every read
// goes through here so soft-deleted rows stay invisible everywhere at once.
func (r *GormTaskRepository) live(householdID string) *gorm.DB {
	return r.db.Model(&models.Task{}).
		Where("tasks.household_id = ?", householdID).
		Where("tasks.is_deleted = ?", false)
}

// overdue narrows a query to tasks whose due date has passed while still
// actionable. ListOverdue, CountOverdue and statistics all share this scope
// so the predicate cannot drift between them.
func overdue(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.due_date IS NOT NULL").
			Where("tasks.due_date < ?", now).
			Where("tasks.status IN ?", []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress})
	}
}

// orderExpr maps a TaskSort to its ORDER BY expression. Due date sorts push
// undated tasks to the end regardless of direction.
func orderExpr(sort TaskSort) (string, error) {
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	switch sort.Field {
	case SortFieldCreatedAt:
		return "tasks.created_at " + dir, nil
	case SortFieldUpdatedAt:
		return "tasks.updated_at " + dir, nil
	case SortFieldDueDate:
		return "CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date " + dir, nil
	case SortFieldPriority:
		return priorityRank + " " + dir, nil
	case SortFieldTitle:
		return "tasks.title " + dir, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, sort.Field)
	}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a live task by household and id
func (r *GormTaskRepository) FindByID(householdID, id string) (*models.Task, error) {
	var task models.Task
	if err := r.live(householdID).Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks matching filter, ordered by sort, one page at a time,
// along with the unpaged total
func (r *GormTaskRepository) List(householdID string, filter TaskFilter, sort TaskSort, page utils.PaginationParams) ([]models.Task, int64, error) {
	order, err := orderExpr(sort)
	if err != nil {
		return nil, 0, err
	}

	query := r.live(householdID)

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *filter.CategoryID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("tasks.assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err = query.
		Order(order).
		Order("tasks.id ASC").
		Scopes(database.Paginate(page)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Search retrieves tasks whose title or description contains text,
// case-insensitively, newest first
func (r *GormTaskRepository) Search(householdID, text string, page utils.PaginationParams) ([]models.Task, int64, error) {
	pattern := "%" + text + "%"
	query := r.live(householdID).
		Where("LOWER(tasks.title) LIKE LOWER(?) OR LOWER(tasks.description) LIKE LOWER(?)", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Order("tasks.created_at DESC").
		Order("tasks.id ASC").
		Scopes(database.Paginate(page)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByAssignee retrieves tasks assigned to userID ordered by due date
// ascending with undated tasks last
func (r *GormTaskRepository) ListByAssignee(householdID, userID string, page utils.PaginationParams) ([]models.Task, int64, error) {
	query := r.live(householdID).Where("tasks.assigned_user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC").
		Order("tasks.id ASC").
		Scopes(database.Paginate(page)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListOverdue retrieves every overdue task, due date ascending
func (r *GormTaskRepository) ListOverdue(householdID string, now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.live(householdID).
		Scopes(overdue(now)).
		Order("tasks.due_date ASC").
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListDueBetween retrieves actionable tasks due inside the inclusive window,
// due date ascending
func (r *GormTaskRepository) ListDueBetween(householdID string, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.live(householdID).
		Where("tasks.due_date >= ?", from).
		Where("tasks.due_date <= ?", to).
		Where("tasks.status IN ?", []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Order("tasks.due_date ASC").
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts live tasks in the household
func (r *GormTaskRepository) Count(householdID string) (int64, error) {
	var count int64
	err := r.live(householdID).Count(&count).Error
	return count, err
}

// CountByStatus counts live tasks in the given status
func (r *GormTaskRepository) CountByStatus(householdID string, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.live(householdID).Where("tasks.status = ?", status).Count(&count).Error
	return count, err
}

// CountOverdue counts tasks satisfying the same overdue predicate as
// ListOverdue
func (r *GormTaskRepository) CountOverdue(householdID string, now time.Time) (int64, error) {
	var count int64
	err := r.live(householdID).Scopes(overdue(now)).Count(&count).Error
	return count, err
}

// CountByCategory counts every task row referencing the category,
// soft-deleted rows included.
func (r *GormTaskRepository) CountByCategory(householdID, categoryID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("tasks.household_id = ?", householdID).
		Where("tasks.category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// HardDelete permanently removes a task row, soft-deleted or not
func (r *GormTaskRepository) HardDelete(householdID, id string) error {
	result := r.db.
		Where("household_id = ? AND id = ?", householdID, id).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
