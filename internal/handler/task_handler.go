package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"todoapp/internal/identity"
	"todoapp/internal/middleware"
	"todoapp/internal/model"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskService interface {
	List(ctx context.Context, req service.ListTasksRequest) (service.ListTasksResult, error)
	Create(ctx context.Context, task *model.Task, callerID string) (bool, error)
	Get(ctx context.Context, id uint, callerID string, isAdmin bool) (*model.Task, error)
	Edit(ctx context.Context, id uint, fields service.TaskFields, callerID string, isAdmin bool) (bool, error)
	Delete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error)
	ToggleComplete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error)
	OwnedCount(ctx context.Context, callerID string) (int64, error)
}

var _ TaskService = (*service.TaskService)(nil)

type TaskHandler struct {
	tasks TaskService
}

func NewTaskHandler(tasks TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest is the body for creating or editing a task
type TaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
}

// ListTasksQuery holds the query string of GET /tasks
type ListTasksQuery struct {
	Owner    string `form:"owner"`
	Search   string `form:"search"`
	Filter   string `form:"filter"`
	Sort     string `form:"sort"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=5"`
}

type TaskResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	IsCompleted bool    `json:"is_completed"`
	CreatedAt   string  `json:"created_at"`
	OwnerID     string  `json:"owner_id"`
}

type TaskListResponse struct {
	Items      []TaskResponse `json:"items"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

func toTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		OwnerID:     t.OwnerID,
	}
}

// List godoc
// @Summary      List tasks
// @Description  Lists the caller's tasks; admins see every user's tasks and may filter by owner.
// @Tags         Tasks
// @Produce      json
// @Param        owner      query string false "admin only: owner user name or email substring"
// @Param        search     query string false "title or description substring"
// @Param        filter     query string false "open | completed"
// @Param        sort       query string false "title_asc | title_desc | descript_asc | descript_desc | date_asc | date_desc | status_asc | status_desc"
// @Param        page       query int    false "page number" default(1)
// @Param        page_size  query int    false "page size" default(5)
// @Success      200 {object} TaskListResponse
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var q ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	result, err := h.tasks.List(c.Request.Context(), service.ListTasksRequest{
		CallerID:    caller.CurrentUserID(),
		IsAdmin:     identity.IsAdmin(caller),
		OwnerQuery:  q.Owner,
		SearchQuery: q.Search,
		Filter:      q.Filter,
		SortOrder:   q.Sort,
		PageNumber:  q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	items := make([]TaskResponse, len(result.Tasks))
	for i := range result.Tasks {
		items[i] = toTaskResponse(&result.Tasks[i])
	}

	c.JSON(http.StatusOK, TaskListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.PageNumber,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Create godoc
// @Summary      Create a task
// @Description  Creates a task owned by the caller. Each user may hold at most 15 tasks.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task body TaskRequest true "task"
// @Success      201 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}

	created, err := h.tasks.Create(c.Request.Context(), task, caller.CurrentUserID())
	switch {
	case errors.Is(err, service.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task"})
		return
	case service.IsNotFound(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if !created {
		c.JSON(http.StatusForbidden, gin.H{"error": "Maximum number of tasks reached (" + strconv.Itoa(service.MaxTasksPerUser) + ")"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id path int true "task id"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID, caller.CurrentUserID(), identity.IsAdmin(caller))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update godoc
// @Summary      Edit a task
// @Description  Overwrites title, description and completion.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id   path int         true "task id"
// @Param        task body TaskRequest true "task"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	isAdmin := identity.IsAdmin(caller)
	updated, err := h.tasks.Edit(c.Request.Context(), taskID, service.TaskFields{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}, caller.CurrentUserID(), isAdmin)
	switch {
	case errors.Is(err, service.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	// the edit is committed; a failed re-read still answers 204
	task, err := h.tasks.Get(c.Request.Context(), taskID, caller.CurrentUserID(), isAdmin)
	if err != nil {
		_ = c.Error(err)
	}
	if task == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Param        id path int true "task id"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	deleted, err := h.tasks.Delete(c.Request.Context(), taskID, caller.CurrentUserID(), identity.IsAdmin(caller))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleComplete godoc
// @Summary      Toggle completion
// @Tags         Tasks
// @Param        id path int true "task id"
// @Success      204
// @Failure      404 {object} map[string]string
// @Security     BearerAuth
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	toggled, err := h.tasks.ToggleComplete(c.Request.Context(), taskID, caller.CurrentUserID(), identity.IsAdmin(caller))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	if !toggled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func currentCaller(c *gin.Context) (identity.Claims, bool) {
	caller, ok := middleware.CurrentPrincipal(c)
	if !ok || caller.CurrentUserID() == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return identity.Claims{}, false
	}
	return caller, true
}

func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return 0, false
	}
	return uint(id), true
}
