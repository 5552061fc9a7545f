package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
)

type TaskGroupHandler struct {
	taskGroupService *services.TaskGroupService
}

func NewTaskGroupHandler(taskGroupService *services.TaskGroupService) *TaskGroupHandler {
	return &TaskGroupHandler{taskGroupService: taskGroupService}
}

// CreateTaskGroup adds a task group to a project, at the end or at an
// explicit position
func (h *TaskGroupHandler) CreateTaskGroup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type CreateTaskGroupRequest struct {
		Name     string `json:"name" binding:"required"`
		Position *int   `json:"position"`
	}

	var req CreateTaskGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.taskGroupService.Create(c.Request.Context(), userID, c.Param("id"), services.CreateTaskGroupInput{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetTaskGroup returns a single task group
func (h *TaskGroupHandler) GetTaskGroup(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	group, err := h.taskGroupService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListTaskGroups returns a project's task groups with their tasks, in
// position order
func (h *TaskGroupHandler) ListTaskGroups(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	groups, err := h.taskGroupService.ListByProject(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_groups": groups})
}

// EditTaskGroup renames and/or moves a task group
func (h *TaskGroupHandler) EditTaskGroup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type EditTaskGroupRequest struct {
		Name     *string `json:"name"`
		Position *int    `json:"position"`
	}

	var req EditTaskGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.taskGroupService.Edit(c.Request.Context(), userID, c.Param("id"), services.EditTaskGroupInput{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// DeleteTaskGroup removes a task group and everything in it
func (h *TaskGroupHandler) DeleteTaskGroup(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.taskGroupService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task group deleted"})
}
