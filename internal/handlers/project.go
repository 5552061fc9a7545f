package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/dto"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
	"github.com/herelius/project-tracker-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a new project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type CreateProjectRequest struct {
		Name              string `json:"name" binding:"required"`
		IconURL           string `json:"icon_url"`
		PublicPermissions uint64 `json:"public_permissions"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, services.CreateProjectInput{
		Name:              req.Name,
		IconURL:           req.IconURL,
		PublicPermissions: req.PublicPermissions,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromProject(project))
}

// GetProject returns a project; anonymous callers get through on public
// projects only
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, grant, err := h.projectService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectWithPermissionsDTO{
		ProjectDTO:  dto.FromProject(project),
		Permissions: grant.Effective.Bits(),
	})
}

// ListProjects returns the caller's projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	memberships, err := h.projectService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	projects := make([]dto.ProjectWithPermissionsDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ProjectWithPermissionsDTO{
			ProjectDTO:  dto.FromProject(&m.Project),
			Permissions: m.Permissions,
		}
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// UpdateProject edits a project's settings
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type UpdateProjectRequest struct {
		Name              *string `json:"name"`
		IconURL           *string `json:"icon_url"`
		PublicPermissions *uint64 `json:"public_permissions"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), userID, c.Param("id"), services.UpdateProjectInput{
		Name:              req.Name,
		IconURL:           req.IconURL,
		PublicPermissions: req.PublicPermissions,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProject(project))
}

// TransferOwnership hands the project to another member
func (h *ProjectHandler) TransferOwnership(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type TransferRequest struct {
		MemberID string `json:"member_id" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.projectService.TransferOwnership(c.Request.Context(), userID, c.Param("id"), req.MemberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ownership transferred"})
}

// DeleteProject removes a project and everything under it
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// GetAudits returns a page of the project's audit log
func (h *ProjectHandler) GetAudits(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	audits, total, err := h.projectService.Audits(c.Request.Context(), userID, c.Param("id"), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": audits,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
