package repository

import "github.com/herelius/project-tracker-api/internal/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user with a freshly generated id
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
