package dto

import "github.com/herelius/project-tracker-api/internal/models"

// UserDTO is the public shape of a user account.
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FromUser converts a user model to its DTO
func FromUser(user *models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// TokenResponse is returned by login.
type TokenResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
