package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/middleware"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

// TaskCommander defines the write-side operations used by TaskHandler.
type TaskCommander interface {
	CreateTask(context.Context, cqrs.CreateTaskCommand) (*models.Task, error)
	UpdateTask(context.Context, cqrs.UpdateTaskCommand) (*models.Task, error)
	DeleteTask(context.Context, cqrs.DeleteTaskCommand) error
	ToggleTask(context.Context, cqrs.ToggleTaskCommand) (*models.Task, error)
}

// TaskQuerier defines the read-side operations used by TaskHandler.
type TaskQuerier interface {
	ListTasks(context.Context, cqrs.ListTasksQuery) ([]models.Task, error)
	GetTask(context.Context, cqrs.GetTaskQuery) (*models.Task, error)
	GetStats(context.Context, cqrs.TaskStatsQuery) (*models.TaskStats, error)
}

// TaskHandler routes task requests to the command or query service. Every
// operation is scoped to the authenticated user.
type TaskHandler struct {
	commands TaskCommander
	queries  TaskQuerier
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// UpdateTaskRequest tells absent fields apart from fields sent as null.
type UpdateTaskRequest struct {
	Title       cqrs.Optional[string] `json:"title"`
	Description cqrs.Optional[string] `json:"description"`
	Status      cqrs.Optional[string] `json:"status"`
	Priority    cqrs.Optional[string] `json:"priority"`
	DueDate     cqrs.Optional[string] `json:"dueDate"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewTaskHandler(commands TaskCommander, queries TaskQuerier) *TaskHandler {
	return &TaskHandler{commands: commands, queries: queries}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}

	tasks, err := h.queries.ListTasks(c.Request.Context(), cqrs.ListTasksQuery{
		OwnerID:  ownerID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}

	task, err := h.queries.GetTask(c.Request.Context(), cqrs.GetTaskQuery{
		OwnerID: ownerID,
		TaskID:  c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetStats(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}

	stats, err := h.queries.GetStats(c.Request.Context(), cqrs.TaskStatsQuery{OwnerID: ownerID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.commands.CreateTask(c.Request.Context(), cqrs.CreateTaskCommand{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.commands.UpdateTask(c.Request.Context(), cqrs.UpdateTaskCommand{
		OwnerID:     ownerID,
		TaskID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ToggleTask(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}

	task, err := h.commands.ToggleTask(c.Request.Context(), cqrs.ToggleTaskCommand{
		OwnerID: ownerID,
		TaskID:  c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, ok := identity(c)
	if !ok {
		return
	}

	err := h.commands.DeleteTask(c.Request.Context(), cqrs.DeleteTaskCommand{
		OwnerID: ownerID,
		TaskID:  c.Param("id"),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
