package dto

import (
	"time"

	"github.com/household-apps/todo-service/internal/models"
)

// TaskDTO represents a task in API responses. Overdue and Completed are
// computed at conversion time.
type TaskDTO struct {
	ID                       string              `json:"id"`
	HouseholdID              string              `json:"household_id"`
	Title                    string              `json:"title"`
	Description              string              `json:"description"`
	Status                   models.TaskStatus   `json:"status"`
	Priority                 models.TaskPriority `json:"priority"`
	PriorityLevel            int                 `json:"priority_level"`
	CategoryID               *string             `json:"category_id"`
	DueDate                  *time.Time          `json:"due_date"`
	EstimatedDurationMinutes *int                `json:"estimated_duration_minutes"`
	AssignedUserID           *string             `json:"assigned_user_id"`
	CreatedByUserID          string              `json:"created_by_user_id"`
	CompletedAt              *time.Time          `json:"completed_at"`
	CompletedByUserID        *string             `json:"completed_by_user_id"`
	Tags                     []string            `json:"tags"`
	RecurringPattern         string              `json:"recurring_pattern,omitempty"`
	Attachments              string              `json:"attachments,omitempty"`
	CustomFields             string              `json:"custom_fields,omitempty"`
	Overdue                  bool                `json:"overdue"`
	Completed                bool                `json:"completed"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO, evaluating the overdue
// predicate at now
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	return TaskDTO{
		ID:                       task.ID,
		HouseholdID:              task.HouseholdID,
		Title:                    task.Title,
		Description:              task.Description,
		Status:                   task.Status,
		Priority:                 task.Priority,
		PriorityLevel:            task.Priority.Level(),
		CategoryID:               task.CategoryID,
		DueDate:                  task.DueDate,
		EstimatedDurationMinutes: task.EstimatedDurationMinutes,
		AssignedUserID:           task.AssignedUserID,
		CreatedByUserID:          task.CreatedByUserID,
		CompletedAt:              task.CompletedAt,
		CompletedByUserID:        task.CompletedByUserID,
		Tags:                     task.Tags,
		RecurringPattern:         task.RecurringPattern,
		Attachments:              task.Attachments,
		CustomFields:             task.CustomFields,
		Overdue:                  task.IsOverdue(now),
		Completed:                task.IsCompleted(),
		CreatedAt:                task.CreatedAt,
		UpdatedAt:                task.UpdatedAt,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse. The same
// now is used for every item so one page reports overdue consistently.
func ToTaskListResponse(tasks []models.Task, page, size int, totalCount int64, now time.Time) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}

	totalPages := 0
	if size > 0 {
		totalPages = int(totalCount) / size
		if int(totalCount)%size > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		Size:       size,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
