package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/household-apps/todo-service/internal/dto"
	apierrors "github.com/household-apps/todo-service/internal/errors"
	"github.com/household-apps/todo-service/internal/middleware"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/services"
	"github.com/household-apps/todo-service/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// requireContext pulls the household and user the middleware resolved.
// Aborts with 401 when either is missing.
func requireContext(c *gin.Context) (householdID, userID string, ok bool) {
	householdID, ok = middleware.GetHouseholdID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return "", "", false
	}
	userID, ok = middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return "", "", false
	}
	return householdID, userID, true
}

// ListTasks returns a filtered, sorted page of the household's tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid pagination parameters")
		return
	}

	input := services.ListTasksInput{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      params,
	}
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}
	if v := c.Query("category_id"); v != "" {
		input.CategoryID = &v
	}
	if v := c.Query("assigned_user_id"); v != "" {
		input.AssignedUserID = &v
	}
	if v := c.Query("due_date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_from")
			return
		}
		input.DueDateFrom = &t
	}
	if v := c.Query("due_date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_to")
			return
		}
		input.DueDateTo = &t
	}

	page, err := h.taskService.ListTasks(householdID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page.Tasks, page.Page.Page, page.Page.Size, page.Total, time.Now()))
}

// SearchTasks returns a page of tasks matching the q parameter
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.taskService.SearchTasks(householdID, c.Query("q"), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page.Tasks, page.Page.Page, page.Page.Size, page.Total, time.Now()))
}

// ListTasksByUser returns a page of the tasks assigned to a user
func (h *TaskHandler) ListTasksByUser(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.taskService.ListTasksByUser(householdID, c.Param("userId"), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page.Tasks, page.Page.Page, page.Page.Size, page.Total, time.Now()))
}

// ListOverdueTasks returns every overdue task of the household
func (h *TaskHandler) ListOverdueTasks(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListOverdueTasks(householdID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	now := time.Now()
	items := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDTO(task, now)
	}

	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// GetTaskStatistics returns the household's aggregate task counts
func (h *TaskHandler) GetTaskStatistics(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	stats, err := h.taskService.GetTaskStatistics(householdID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(householdID, c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	householdID, userID, ok := requireContext(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title                    string     `json:"title" binding:"required"`
		Description              string     `json:"description"`
		Status                   string     `json:"status"`
		Priority                 string     `json:"priority"`
		CategoryID               *string    `json:"category_id"`
		DueDate                  *time.Time `json:"due_date"`
		EstimatedDurationMinutes *int       `json:"estimated_duration_minutes"`
		AssignedUserID           *string    `json:"assigned_user_id"`
		Tags                     []string   `json:"tags"`
		RecurringPattern         string     `json:"recurring_pattern"`
		Attachments              string     `json:"attachments"`
		CustomFields             string     `json:"custom_fields"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(householdID, services.CreateTaskInput{
		Title:                    req.Title,
		Description:              req.Description,
		Status:                   models.TaskStatus(req.Status),
		Priority:                 models.TaskPriority(req.Priority),
		CategoryID:               req.CategoryID,
		DueDate:                  req.DueDate,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		AssignedUserID:           req.AssignedUserID,
		CreatedByUserID:          userID,
		Tags:                     req.Tags,
		RecurringPattern:         req.RecurringPattern,
		Attachments:              req.Attachments,
		CustomFields:             req.CustomFields,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, time.Now()))
}

// UpdateTask applies a partial update. Absent and null fields alike leave
// the current value in place.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	householdID, userID, ok := requireContext(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title                    *string    `json:"title"`
		Description              *string    `json:"description"`
		Status                   *string    `json:"status"`
		Priority                 *string    `json:"priority"`
		CategoryID               *string    `json:"category_id"`
		DueDate                  *time.Time `json:"due_date"`
		EstimatedDurationMinutes *int       `json:"estimated_duration_minutes"`
		AssignedUserID           *string    `json:"assigned_user_id"`
		Tags                     *[]string  `json:"tags"`
		RecurringPattern         *string    `json:"recurring_pattern"`
		Attachments              *string    `json:"attachments"`
		CustomFields             *string    `json:"custom_fields"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:                    req.Title,
		Description:              req.Description,
		CategoryID:               req.CategoryID,
		DueDate:                  req.DueDate,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		AssignedUserID:           req.AssignedUserID,
		Tags:                     req.Tags,
		RecurringPattern:         req.RecurringPattern,
		Attachments:              req.Attachments,
		CustomFields:             req.CustomFields,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(householdID, c.Param("id"), userID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// UpdateTaskStatus moves a task to a new status
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	householdID, userID, ok := requireContext(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(householdID, c.Param("id"), models.TaskStatus(req.Status), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// AssignTask sets or clears the task's assignee
func (h *TaskHandler) AssignTask(c *gin.Context) {
	householdID, _, ok := requireContext(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		UserID *string `json:"user_id"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AssignTask(householdID, c.Param("id"), req.UserID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, time.Now()))
}

// DeleteTask soft deletes a task. With permanent=true the row is removed for
// good.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	householdID, userID, ok := requireContext(c)
	if !ok {
		return
	}

	if c.Query("permanent") == "true" {
		if err := h.taskService.PermanentlyDeleteTask(householdID, c.Param("id")); err != nil {
			apierrors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Task permanently deleted",
		})
		return
	}

	if err := h.taskService.DeleteTask(householdID, c.Param("id"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SuggestTasks generates task suggestions from text using AI
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	_, _, ok := requireContext(c)
	if !ok {
		return
	}

	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is not configured. Please set OPENAI_API_KEY environment variable."})
		case errors.Is(err, services.ErrAINoTasksSuggested), errors.Is(err, services.ErrAINoValidTasks):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			apierrors.Respond(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
