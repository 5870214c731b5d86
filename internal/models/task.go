package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether p is one of the known priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Level returns the ordering rank of p, from 1 (low) to 4 (urgent).
// Unknown priorities rank 0.
func (p TaskPriority) Level() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	case TaskPriorityUrgent:
		return 4
	}
	return 0
}

type Task struct {
	ID          string       `gorm:"type:varchar(36);primarykey" json:"id"`
	HouseholdID string       `gorm:"type:varchar(36);not null;index" json:"household_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	// CategoryID is a weak reference; the row may outlive the category.
	CategoryID *string `gorm:"type:varchar(36);index" json:"category_id"`

	DueDate                  *time.Time `gorm:"index" json:"due_date"`
	EstimatedDurationMinutes *int       `json:"estimated_duration_minutes"`

	AssignedUserID  *string `gorm:"type:varchar(36);index" json:"assigned_user_id"`
	CreatedByUserID string  `gorm:"type:varchar(36);not null" json:"created_by_user_id"`

	CompletedAt       *time.Time `json:"completed_at"`
	CompletedByUserID *string    `gorm:"type:varchar(36)" json:"completed_by_user_id"`

	Tags             []string `gorm:"serializer:json" json:"tags"`
	RecurringPattern string   `gorm:"type:text" json:"recurring_pattern"`
	Attachments      string   `gorm:"type:text" json:"attachments"`
	CustomFields     string   `gorm:"type:text" json:"custom_fields"`

	IsDeleted       bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at"`
	DeletedByUserID *string    `gorm:"type:varchar(36)" json:"deleted_by_user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id and fills enum defaults.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	return nil
}

// IsCompleted reports whether the task has reached the completed status.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsOverdue reports whether the task's due date has passed at now while the
// task is still pending or in progress. Tasks without a due date are never
// overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status != TaskStatusPending && t.Status != TaskStatusInProgress {
		return false
	}
	return t.DueDate.Before(now)
}
