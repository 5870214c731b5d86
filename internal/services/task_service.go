package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/cache"
	"github.com/household-apps/todo-service/internal/constants"
	apperrors "github.com/household-apps/todo-service/internal/errors"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/repository"
	"github.com/household-apps/todo-service/internal/utils"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksSuggested     = errors.New("AI did not suggest any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	store        cache.Store
	aiService    *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, categoryRepo repository.CategoryRepository, store cache.Store, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		store:        store,
		aiService:    aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	CategoryID     *string
	AssignedUserID *string
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	SortBy         string
	SortOrder      string
	Page           utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title                    string
	Description              string
	Status                   models.TaskStatus
	Priority                 models.TaskPriority
	CategoryID               *string
	DueDate                  *time.Time
	EstimatedDurationMinutes *int
	AssignedUserID           *string
	CreatedByUserID          string
	Tags                     []string
	RecurringPattern         string
	Attachments              string
	CustomFields             string
}

// UpdateTaskInput represents input for updating a task. Nil fields stay
// unchanged; the Clear flags empty their field explicitly.
type UpdateTaskInput struct {
	Title                    *string
	Description              *string
	Status                   *models.TaskStatus
	Priority                 *models.TaskPriority
	CategoryID               *string
	ClearCategoryID          bool
	DueDate                  *time.Time
	ClearDueDate             bool
	EstimatedDurationMinutes *int
	ClearEstimatedDuration   bool
	AssignedUserID           *string
	ClearAssignedUserID      bool
	Tags                     *[]string
	RecurringPattern         *string
	Attachments              *string
	CustomFields             *string
}

// TaskStatistics summarizes the live tasks of one household.
type TaskStatistics struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	InProgress     int64   `json:"in_progress"`
	Completed      int64   `json:"completed"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// TaskPage is one page of tasks plus the window actually served and the
// unpaged total. Page may differ from the request when defaults or the size
// cap applied.
type TaskPage struct {
	Tasks []models.Task
	Page  utils.PaginationParams
	Total int64
}

// ListTasks returns one page of a household's tasks matching the input
// filters
func (s *TaskService) ListTasks(householdID string, input ListTasksInput) (*TaskPage, error) {
	filter, err := resolveFilter(input)
	if err != nil {
		return nil, err
	}
	sort, err := resolveSort(input.SortBy, input.SortOrder)
	if err != nil {
		return nil, err
	}
	page, err := resolvePage(input.Page)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.List(householdID, filter, sort, page)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSortField) {
			return nil, apperrors.InvalidArgument("%v", err)
		}
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list tasks: %w", err))
	}

	return &TaskPage{Tasks: tasks, Page: page, Total: total}, nil
}

// SearchTasks returns one page of tasks whose title or description contains
// text, case-insensitively, newest first
func (s *TaskService) SearchTasks(householdID, text string, page utils.PaginationParams) (*TaskPage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidArgument("search text is required")
	}

	page, err := resolvePage(page)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.Search(householdID, text, page)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to search tasks: %w", err))
	}

	return &TaskPage{Tasks: tasks, Page: page, Total: total}, nil
}

// ListTasksByUser returns one page of the tasks assigned to userID, nearest
// due date first with undated tasks last
func (s *TaskService) ListTasksByUser(householdID, userID string, page utils.PaginationParams) (*TaskPage, error) {
	if userID == "" {
		return nil, apperrors.InvalidArgument("user id is required")
	}

	page, err := resolvePage(page)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.ListByAssignee(householdID, userID, page)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list tasks by user: %w", err))
	}

	return &TaskPage{Tasks: tasks, Page: page, Total: total}, nil
}

// ListOverdueTasks returns every overdue task of the household, nearest due
// date first
func (s *TaskService) ListOverdueTasks(householdID string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListOverdue(householdID, time.Now())
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list overdue tasks: %w", err))
	}
	return tasks, nil
}

// GetTaskStatistics computes live aggregate counts over the household's
// tasks. The overdue figure uses the same predicate as ListOverdueTasks.
func (s *TaskService) GetTaskStatistics(householdID string) (*TaskStatistics, error) {
	now := time.Now()

	total, err := s.taskRepo.Count(householdID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to count tasks: %w", err))
	}
	pending, err := s.taskRepo.CountByStatus(householdID, models.TaskStatusPending)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to count pending tasks: %w", err))
	}
	inProgress, err := s.taskRepo.CountByStatus(householdID, models.TaskStatusInProgress)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to count in-progress tasks: %w", err))
	}
	completed, err := s.taskRepo.CountByStatus(householdID, models.TaskStatusCompleted)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to count completed tasks: %w", err))
	}
	overdue, err := s.taskRepo.CountOverdue(householdID, now)
	if err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to count overdue tasks: %w", err))
	}

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	return &TaskStatistics{
		Total:          total,
		Pending:        pending,
		InProgress:     inProgress,
		Completed:      completed,
		Overdue:        overdue,
		CompletionRate: rate,
	}, nil
}

// GetTask returns a task by id within the caller's household. Cache hits for
// another household fall through to the store so cross-tenant lookups still
// end in not-found.
func (s *TaskService) GetTask(householdID, id string) (*models.Task, error) {
	if v, ok := s.store.Get(cache.TaskKey(id)); ok {
		if cached, ok := v.(models.Task); ok && cached.HouseholdID == householdID {
			task := cached
			return &task, nil
		}
	}

	task, err := s.taskRepo.FindByID(householdID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to find task: %w", err))
	}

	s.store.Set(cache.TaskKey(id), *task)
	return task, nil
}

// CreateTask creates a new task with validation
func (s *TaskService) CreateTask(householdID string, input CreateTaskInput) (*models.Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, apperrors.InvalidArgument("invalid status %q", input.Status)
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, apperrors.InvalidArgument("invalid priority %q", input.Priority)
	}
	if input.EstimatedDurationMinutes != nil && *input.EstimatedDurationMinutes <= 0 {
		return nil, apperrors.InvalidArgument("estimated duration must be positive")
	}
	if input.CreatedByUserID == "" {
		return nil, apperrors.InvalidArgument("creating user id is required")
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(householdID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		HouseholdID:              householdID,
		Title:                    input.Title,
		Description:              input.Description,
		Status:                   input.Status,
		Priority:                 input.Priority,
		CategoryID:               input.CategoryID,
		DueDate:                  input.DueDate,
		EstimatedDurationMinutes: input.EstimatedDurationMinutes,
		AssignedUserID:           input.AssignedUserID,
		CreatedByUserID:          input.CreatedByUserID,
		Tags:                     input.Tags,
		RecurringPattern:         input.RecurringPattern,
		Attachments:              input.Attachments,
		CustomFields:             input.CustomFields,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to create task: %w", err))
	}

	s.store.Delete(cache.TaskKey(task.ID))
	return task, nil
}

// UpdateTask applies a partial update to an existing task
func (s *TaskService) UpdateTask(householdID, taskID, actorUserID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(householdID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.InvalidArgument("invalid status %q", *input.Status)
		}
		applyStatus(task, *input.Status, actorUserID)
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, apperrors.InvalidArgument("invalid priority %q", *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.ClearCategoryID {
		task.CategoryID = nil
	} else if input.CategoryID != nil {
		if err := s.ensureCategory(householdID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearEstimatedDuration {
		task.EstimatedDurationMinutes = nil
	} else if input.EstimatedDurationMinutes != nil {
		if *input.EstimatedDurationMinutes <= 0 {
			return nil, apperrors.InvalidArgument("estimated duration must be positive")
		}
		task.EstimatedDurationMinutes = input.EstimatedDurationMinutes
	}
	if input.ClearAssignedUserID {
		task.AssignedUserID = nil
	} else if input.AssignedUserID != nil {
		task.AssignedUserID = input.AssignedUserID
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.RecurringPattern != nil {
		task.RecurringPattern = *input.RecurringPattern
	}
	if input.Attachments != nil {
		task.Attachments = *input.Attachments
	}
	if input.CustomFields != nil {
		task.CustomFields = *input.CustomFields
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to update task: %w", err))
	}

	s.store.Delete(cache.TaskKey(task.ID))
	return task, nil
}

// UpdateTaskStatus moves a task to the given status
func (s *TaskService) UpdateTaskStatus(householdID, taskID string, status models.TaskStatus, actorUserID string) (*models.Task, error) {
	if !status.IsValid() {
		return nil, apperrors.InvalidArgument("invalid status %q", status)
	}

	task, err := s.findTask(householdID, taskID)
	if err != nil {
		return nil, err
	}

	applyStatus(task, status, actorUserID)

	if err := s.taskRepo.Update(task); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to update task status: %w", err))
	}

	s.store.Delete(cache.TaskKey(task.ID))
	return task, nil
}

// AssignTask sets or clears the task's assignee
func (s *TaskService) AssignTask(householdID, taskID string, assigneeUserID *string) (*models.Task, error) {
	if assigneeUserID != nil && *assigneeUserID == "" {
		return nil, apperrors.InvalidArgument("user id is required")
	}

	task, err := s.findTask(householdID, taskID)
	if err != nil {
		return nil, err
	}

	task.AssignedUserID = assigneeUserID

	if err := s.taskRepo.Update(task); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to assign task: %w", err))
	}

	s.store.Delete(cache.TaskKey(task.ID))
	return task, nil
}

// DeleteTask soft deletes a task, recording when and by whom
func (s *TaskService) DeleteTask(householdID, taskID, actorUserID string) error {
	task, err := s.findTask(householdID, taskID)
	if err != nil {
		return err
	}

	now := time.Now()
	actor := actorUserID
	task.IsDeleted = true
	task.DeletedAt = &now
	task.DeletedByUserID = &actor

	if err := s.taskRepo.Update(task); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to delete task: %w", err))
	}

	s.store.Delete(cache.TaskKey(task.ID))
	return nil
}

// PermanentlyDeleteTask removes a task row for good, soft-deleted or not
func (s *TaskService) PermanentlyDeleteTask(householdID, taskID string) error {
	if err := s.taskRepo.HardDelete(householdID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("task not found")
		}
		return apperrors.StoreUnavailable(fmt.Errorf("failed to permanently delete task: %w", err))
	}

	s.store.Delete(cache.TaskKey(taskID))
	return nil
}

// SuggestTasks extracts task suggestions from free-form text via AI
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.InvalidArgument("text is required")
	}

	aiTasks, err := s.aiService.SuggestTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksSuggested
	}
	if len(aiTasks) > constants.MaxSuggestedTasks {
		return nil, fmt.Errorf("AI suggested too many tasks (max %d)", constants.MaxSuggestedTasks)
	}

	validTasks := make([]SuggestedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if !models.TaskPriority(aiTask.Priority).IsValid() {
			aiTask.Priority = string(models.TaskPriorityMedium)
		}
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// findTask loads a live task and classifies the failure modes
func (s *TaskService) findTask(householdID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(householdID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task not found")
		}
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to find task: %w", err))
	}
	return task, nil
}

// ensureCategory verifies the referenced category is an active category of
// the household. Inactive and cross-household categories alike read as
// absent.
func (s *TaskService) ensureCategory(householdID, categoryID string) error {
	exists, err := s.categoryRepo.ActiveExists(householdID, categoryID)
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to verify category: %w", err))
	}
	if !exists {
		return apperrors.NotFound("category not found")
	}
	return nil
}

// applyStatus moves task to status. Completion data is stamped only on the
// transition into completed; re-completing keeps the original stamp, and
// leaving completed keeps it as history.
func applyStatus(task *models.Task, status models.TaskStatus, actorUserID string) {
	if status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted {
		now := time.Now()
		actor := actorUserID
		task.CompletedAt = &now
		task.CompletedByUserID = &actor
	}
	task.Status = status
}

func resolveFilter(input ListTasksInput) (repository.TaskFilter, error) {
	filter := repository.TaskFilter{
		CategoryID:     input.CategoryID,
		AssignedUserID: input.AssignedUserID,
		DueDateFrom:    input.DueDateFrom,
		DueDateTo:      input.DueDateTo,
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return repository.TaskFilter{}, apperrors.InvalidArgument("invalid status %q", *input.Status)
		}
		filter.Status = input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return repository.TaskFilter{}, apperrors.InvalidArgument("invalid priority %q", *input.Priority)
		}
		filter.Priority = input.Priority
	}
	return filter, nil
}

func resolveSort(sortBy, sortOrder string) (repository.TaskSort, error) {
	if sortBy == "" {
		sortBy = repository.SortFieldCreatedAt
	}

	var desc bool
	switch strings.ToLower(sortOrder) {
	case "", "desc":
		desc = true
	case "asc":
		desc = false
	default:
		return repository.TaskSort{}, apperrors.InvalidArgument("invalid sort order %q", sortOrder)
	}

	return repository.TaskSort{Field: sortBy, Desc: desc}, nil
}

// resolvePage validates the pagination window. Oversized pages are clamped,
// not rejected.
func resolvePage(page utils.PaginationParams) (utils.PaginationParams, error) {
	if page.Page < 0 {
		return utils.PaginationParams{}, apperrors.InvalidArgument("page must not be negative")
	}
	if page.Size < 0 {
		return utils.PaginationParams{}, apperrors.InvalidArgument("size must not be negative")
	}
	if page.Size == 0 {
		page.Size = constants.DefaultPageSize
	}
	if page.Size > constants.MaxPageSize {
		page.Size = constants.MaxPageSize
	}
	return page, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.InvalidArgument("title is required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return apperrors.InvalidArgument("title must be at most %d characters", constants.MaxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.MaxTaskDescriptionLength {
		return apperrors.InvalidArgument("description must be at most %d characters", constants.MaxTaskDescriptionLength)
	}
	return nil
}
