package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/dto"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListTasks returns the tasks visible to the current user in their saved order.
// Optional filters: title, priority, status (including Overdue).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type ListTasksQuery struct {
		Title    string `form:"title"`
		Priority string `form:"priority" binding:"omitempty,oneof=Low Medium High"`
		Status   string `form:"status" binding:"omitempty,oneof=Pending InProgress Completed Overdue"`
	}

	var q ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindingError(c, err)
		return
	}

	tasks, err := h.taskService.ListVisibleTasks(actor, services.TaskSearch{
		Title:    q.Title,
		Priority: models.TaskPriority(q.Priority),
		Status:   models.TaskStatus(q.Status),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks, h.now()),
	})
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.now()))
}

// CreateTask creates a new task for one of the manager's employees
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title        string `json:"title" binding:"required,max=100"`
		Description  string `json:"description" binding:"required"`
		DueDate      string `json:"due_date" binding:"required"`
		Priority     string `json:"priority" binding:"omitempty,oneof=Low Medium High"`
		Status       string `json:"status" binding:"omitempty,oneof=Pending InProgress Completed"`
		AssignedToID uint64 `json:"assigned_to_id" binding:"required"`
		Order        uint   `json:"order"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	dueDate, err := dto.ParseDate(req.DueDate)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "Validation failed", map[string]string{"due_date": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      &dueDate,
		Priority:     models.TaskPriority(req.Priority),
		Status:       models.TaskStatus(req.Status),
		AssignedToID: req.AssignedToID,
		SortOrder:    req.Order,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, h.now()))
}

// UpdateTask updates an existing task. Omitted fields are left unchanged.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title        *string              `json:"title" binding:"omitempty,max=100"`
		Description  *string              `json:"description"`
		DueDate      *string              `json:"due_date"`
		Priority     *models.TaskPriority `json:"priority" binding:"omitempty,oneof=Low Medium High"`
		Status       *models.TaskStatus   `json:"status" binding:"omitempty,oneof=Pending InProgress Completed"`
		AssignedToID *uint64              `json:"assigned_to_id"`
		Order        *uint                `json:"order"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	input := services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
		SortOrder:    req.Order,
	}
	if req.DueDate != nil {
		dueDate, err := dto.ParseDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequestWithDetails(c, "Validation failed", map[string]string{"due_date": err.Error()})
			return
		}
		input.DueDate = &dueDate
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), actor, task.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, h.now()))
}

// DeleteTask deletes a task. Visibility is not required, only the delete rule.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully.",
	})
}

// MarkTaskDone completes a task assigned to the current user. Repeating the call is harmless.
func (h *TaskHandler) MarkTaskDone(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	changed, err := h.taskService.MarkTaskDone(actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"changed": changed,
	})
}

// ReorderTasks saves the current user's private task order.
// Any failure is reported as {success: false, error}.
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type orderItem struct {
		ID    uint64 `json:"id" binding:"required"`
		Order *int   `json:"order" binding:"required"`
	}
	type ReorderRequest struct {
		Order []orderItem `json:"order" binding:"dive"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.OperationFailed(c, "Invalid request")
		return
	}

	entries := make([]services.TaskPosition, len(req.Order))
	for i, item := range req.Order {
		entries[i] = services.TaskPosition{TaskID: item.ID, Position: *item.Order}
	}

	if err := h.taskService.ReorderTasks(actor, entries); err != nil {
		apierrors.OperationFailed(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateTasks drafts tasks from free text with the AI service
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required,max=10000"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), actor, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
	})
}

func parseIDParam(c *gin.Context, name, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, message)
		return 0, false
	}
	return id, true
}
