package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/auth"
	"github.com/herelius/project-tracker-api/internal/dto"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	codec       *auth.TokenCodec
}

func NewAuthHandler(authService *services.AuthService, codec *auth.TokenCodec) *AuthHandler {
	return &AuthHandler{authService: authService, codec: codec}
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login verifies credentials and issues a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	token, err := h.codec.Issue(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		Token: token,
		User:  dto.FromUser(user),
	})
}

// GetCurrentUser returns the authenticated user's account
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c)
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}
