// Package authz resolves a caller's project membership and effective
// capability set from any entity id in the hierarchy.
package authz

import (
	"errors"
	"fmt"

	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/permissions"
	"github.com/herelius/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// ErrForbidden covers every authorization failure: missing capability, no
// accepted membership, or a referenced entity that does not exist. Callers
// must not be able to tell these apart.
var ErrForbidden = errors.New("forbidden")

// Grant is a successful authorization: the resolved project, the caller's
// membership (nil for anonymous public access) and the capability set the
// request runs under.
type Grant struct {
	ProjectID string
	Member    *models.ProjectMember
	Effective permissions.Permissions
}

// Authorize walks from entityID up to its owning project and checks that the
// caller holds the required capabilities there. userID may be empty for
// anonymous callers; readOnly marks operations eligible for a public
// project's public_permissions. Run it on the mutation's transaction so the
// permission check and the mutation see the same state.
func Authorize(tx *gorm.DB, kind repository.EntityKind, entityID, userID string, required permissions.Permissions, readOnly bool) (*Grant, error) {
	projectID, err := repository.ResolveProjectID(tx, kind, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve owning project: %w", err)
	}

	var project models.Project
	if err := tx.Take(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if userID != "" {
		var member models.ProjectMember
		err := tx.Take(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
		switch {
		case err == nil:
			if member.Accepted {
				effective := member.PermissionSet()
				if effective.Check(required) != nil {
					return nil, ErrForbidden
				}
				return &Grant{ProjectID: projectID, Member: &member, Effective: effective}, nil
			}
			// A pending invitation grants nothing, not even read. Fall
			// through to the public path like any non-member.
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
	}

	if readOnly {
		public := permissions.FromBits(project.PublicPermissions)
		if public != permissions.None && public.Contains(required) {
			return &Grant{ProjectID: projectID, Effective: public}, nil
		}
	}

	return nil, ErrForbidden
}
