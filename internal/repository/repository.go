package repository

import (
	"errors"
	"time"

	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/utils"
)

// ErrInvalidSortField is returned when a list is ordered by a field outside
// the sortable set.
var ErrInvalidSortField = errors.New("invalid sort field")

// Sortable task fields. These are request-level names; the repository maps
// them to columns.
const (
	SortFieldCreatedAt = "createdAt"
	SortFieldUpdatedAt = "updatedAt"
	SortFieldDueDate   = "dueDate"
	SortFieldPriority  = "priority"
	SortFieldTitle     = "title"
)

// TaskSort describes the requested ordering of a task listing. Field must be
// one of the SortField constants.
type TaskSort struct {
	Field string
	Desc  bool
}

// TaskFilter holds the optional criteria a task listing may be narrowed by.
// Nil fields impose no constraint; set fields combine conjunctively.
// DueDateFrom and DueDateTo are inclusive bounds.
type TaskFilter struct {
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	CategoryID     *string
	AssignedUserID *string
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
}

// TaskRepository defines the interface for task data access. Every method is
// household-scoped; soft-deleted rows are invisible except where noted.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a live task by household and id
	FindByID(householdID, id string) (*models.Task, error)

	// List retrieves tasks matching filter, ordered by sort, one page at a
	// time, along with the unpaged total
	List(householdID string, filter TaskFilter, sort TaskSort, page utils.PaginationParams) ([]models.Task, int64, error)

	// Search retrieves tasks whose title or description contains text,
	// case-insensitively, newest first
	Search(householdID, text string, page utils.PaginationParams) ([]models.Task, int64, error)

	// ListByAssignee retrieves tasks assigned to userID ordered by due date
	// ascending with undated tasks last
	ListByAssignee(householdID, userID string, page utils.PaginationParams) ([]models.Task, int64, error)

	// ListOverdue retrieves every overdue task, due date ascending
	ListOverdue(householdID string, now time.Time) ([]models.Task, error)

	// ListDueBetween retrieves actionable tasks due inside the inclusive
	// window, due date ascending
	ListDueBetween(householdID string, from, to time.Time) ([]models.Task, error)

	// Count counts live tasks in the household
	Count(householdID string) (int64, error)

	// CountByStatus counts live tasks in the given status
	CountByStatus(householdID string, status models.TaskStatus) (int64, error)

	// CountOverdue counts tasks satisfying the same overdue predicate as
	// ListOverdue
	CountOverdue(householdID string, now time.Time) (int64, error)

	// CountByCategory counts every task row referencing the category,
	// soft-deleted rows included
	CountByCategory(householdID, categoryID string) (int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// HardDelete permanently removes a task row, soft-deleted or not
	HardDelete(householdID, id string) error
}

// CategoryWithTaskCount pairs a category with the number of live tasks filed
// under it.
type CategoryWithTaskCount struct {
	models.Category
	TaskCount int64 `json:"task_count"`
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	// Create creates a new category
	Create(category *models.Category) error

	// FindByID finds a category by household and id
	FindByID(householdID, id string) (*models.Category, error)

	// ListActive lists active categories ordered by sort order
	ListActive(householdID string) ([]models.Category, error)

	// ListActiveWithTaskCounts lists active categories together with their
	// live task counts
	ListActiveWithTaskCounts(householdID string) ([]CategoryWithTaskCount, error)

	// CountActive counts the household's active categories
	CountActive(householdID string) (int64, error)

	// ActiveExists reports whether an active category with the given id
	// exists in the household
	ActiveExists(householdID, id string) (bool, error)

	// ActiveNameExists reports whether an active category with the given
	// name exists in the household, excluding the category with excludeID
	ActiveNameExists(householdID, name, excludeID string) (bool, error)

	// Update updates a category
	Update(category *models.Category) error
}

// HouseholdRepository defines the interface for household data access. The
// service manages households elsewhere; this side only reads them.
type HouseholdRepository interface {
	// FindByID finds a household by ID
	FindByID(id string) (*models.Household, error)

	// ListActive lists all active households
	ListActive() ([]models.Household, error)
}
