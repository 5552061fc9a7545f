package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask adds a task to the end of a task group
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type CreateTaskRequest struct {
		Name          string     `json:"name" binding:"required"`
		Information   string     `json:"information"`
		Due           *time.Time `json:"due"`
		PrimaryColour string     `json:"primary_colour"`
		AccentColour  string     `json:"accent_colour"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, c.Param("id"), services.CreateTaskInput{
		Name:          req.Name,
		Information:   req.Information,
		Due:           req.Due,
		PrimaryColour: req.PrimaryColour,
		AccentColour:  req.AccentColour,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask returns a task with its sub-tasks
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	task, err := h.taskService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// EditTask updates a task's fields, position or group
func (h *TaskHandler) EditTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type EditTaskRequest struct {
		Name          *string    `json:"name"`
		Information   *string    `json:"information"`
		Due           *time.Time `json:"due"`
		PrimaryColour *string    `json:"primary_colour"`
		AccentColour  *string    `json:"accent_colour"`
		Position      *int       `json:"position"`
		TaskGroupID   *string    `json:"task_group_id"`
	}

	var req EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Edit(c.Request.Context(), userID, c.Param("id"), services.EditTaskInput{
		Name:          req.Name,
		Information:   req.Information,
		Due:           req.Due,
		PrimaryColour: req.PrimaryColour,
		AccentColour:  req.AccentColour,
		Position:      req.Position,
		TaskGroupID:   req.TaskGroupID,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task and its sub-tasks
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
