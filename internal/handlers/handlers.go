package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/auth"
	"github.com/herelius/project-tracker-api/internal/authz"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/services"
)

// handleServiceError maps service failures onto the API error taxonomy.
// Anything unrecognised is logged in full and surfaced as a bare internal
// error.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c)
	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, services.ErrNotProjectOwner):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUnknownUser),
		errors.Is(err, services.ErrUnknownAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrNotInvited),
		errors.Is(err, services.ErrOwnerCannotLeave),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.Conflict(c, err.Error())
	default:
		log.Printf("internal error: %v", err)
		apierrors.InternalError(c)
	}
}
