package services

import "errors"

// ErrInvalidName rejects names outside the 3..30 character range used for
// usernames, projects, task groups and tasks alike.
var ErrInvalidName = errors.New("name must be between 3 and 30 characters")

func validateName(name string) error {
	if len(name) < 3 || len(name) > 30 {
		return ErrInvalidName
	}
	return nil
}
