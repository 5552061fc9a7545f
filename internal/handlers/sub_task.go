package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
)

type SubTaskHandler struct {
	subTaskService *services.SubTaskService
}

func NewSubTaskHandler(subTaskService *services.SubTaskService) *SubTaskHandler {
	return &SubTaskHandler{subTaskService: subTaskService}
}

// CreateSubTask adds a sub-task to the end of a task
func (h *SubTaskHandler) CreateSubTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type CreateSubTaskRequest struct {
		Body     string  `json:"body" binding:"required"`
		Weight   int     `json:"weight"`
		Assignee *string `json:"assignee"`
	}

	var req CreateSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subTask, err := h.subTaskService.Create(c.Request.Context(), userID, c.Param("id"), services.CreateSubTaskInput{
		Body:     req.Body,
		Weight:   req.Weight,
		Assignee: req.Assignee,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subTask)
}

// EditSubTask updates a sub-task's fields or position
func (h *SubTaskHandler) EditSubTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type EditSubTaskRequest struct {
		Body          *string `json:"body"`
		Weight        *int    `json:"weight"`
		Assignee      *string `json:"assignee"`
		ClearAssignee bool    `json:"clear_assignee"`
		Completed     *bool   `json:"completed"`
		Position      *int    `json:"position"`
	}

	var req EditSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subTask, err := h.subTaskService.Edit(c.Request.Context(), userID, c.Param("id"), services.EditSubTaskInput{
		Body:          req.Body,
		Weight:        req.Weight,
		Assignee:      req.Assignee,
		ClearAssignee: req.ClearAssignee,
		Completed:     req.Completed,
		Position:      req.Position,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subTask)
}

// DeleteSubTask removes a sub-task
func (h *SubTaskHandler) DeleteSubTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.subTaskService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sub task deleted"})
}
