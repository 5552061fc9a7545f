package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/dto"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// InviteMember invites a user to the project by username
func (h *MemberHandler) InviteMember(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type InviteRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.Invite(c.Request.Context(), userID, c.Param("id"), req.Username)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMember(member))
}

// ListMembers returns the project's members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	members, err := h.memberService.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i := range members {
		memberDTOs[i] = dto.FromMember(&members[i])
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

// ListInvitations returns the caller's pending invitations
func (h *MemberHandler) ListInvitations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	invitations, err := h.memberService.Invitations(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	invitationDTOs := make([]dto.InvitationDTO, len(invitations))
	for i := range invitations {
		invitationDTOs[i] = dto.InvitationDTO{
			MemberDTO: dto.FromMember(&invitations[i]),
			Project:   dto.FromProject(&invitations[i].Project),
		}
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitationDTOs})
}

// AcceptInvitation accepts the caller's pending invitation
func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	member, err := h.memberService.Accept(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMember(member))
}

// DenyInvitation removes the caller's pending invitation
func (h *MemberHandler) DenyInvitation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.memberService.Deny(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation denied"})
}

// UpdateMemberPermissions replaces a member's capability set
func (h *MemberHandler) UpdateMemberPermissions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	type UpdatePermissionsRequest struct {
		Permissions uint64 `json:"permissions"`
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.UpdatePermissions(c.Request.Context(), userID, c.Param("id"), req.Permissions)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMember(member))
}

// RemoveMember removes another member from the project
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.memberService.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// LeaveProject removes the caller's own membership
func (h *MemberHandler) LeaveProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	if err := h.memberService.Leave(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left project"})
}
