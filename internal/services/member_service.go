package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/herelius/project-tracker-api/internal/authz"
	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/permissions"
	"github.com/herelius/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember        = errors.New("user is already a member of this project")
	ErrUnknownUser          = errors.New("no user with that username")
	ErrNotInvited           = errors.New("no pending invitation")
	ErrOwnerCannotLeave     = errors.New("the owner cannot leave the project")
	ErrCannotRemoveOwner    = errors.New("the project owner cannot be removed")
	ErrCannotRemoveYourself = errors.New("use leave to remove yourself")
)

// MemberService manages project memberships and invitations.
type MemberService struct {
	db *gorm.DB
}

// NewMemberService creates a new MemberService.
func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// Invite creates a pending membership for the named user. The invitee holds
// no capabilities until they accept.
func (s *MemberService) Invite(ctx context.Context, actorUserID, projectID, username string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityProject, projectID, actorUserID, permissions.InviteMembers, false)
		if err != nil {
			return err
		}

		var invitee models.User
		if err := tx.Take(&invitee, "username = ?", username).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownUser
			}
			return fmt.Errorf("failed to find invitee: %w", err)
		}

		var count int64
		err = tx.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, invitee.ID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		memberID, err := repository.GenerateID(tx, "project_members", repository.MemberIDLength)
		if err != nil {
			return err
		}

		member = models.ProjectMember{
			ID:          memberID,
			ProjectID:   projectID,
			UserID:      invitee.ID,
			Permissions: permissions.DefaultMember.Bits(),
			Accepted:    false,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create invitation: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Invited '%s' to the project", invitee.Username))
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List returns a project's members, invitees included.
func (s *MemberService) List(ctx context.Context, userID, projectID string) ([]models.ProjectMember, error) {
	db := s.db.WithContext(ctx)

	if _, err := authz.Authorize(db, repository.EntityProject, projectID, userID, permissions.ReadProject, true); err != nil {
		return nil, err
	}

	var members []models.ProjectMember
	err := db.Preload("User").Where("project_id = ?", projectID).Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Invitations lists the caller's pending invitations. This is the one
// capability-free read a pending membership allows.
func (s *MemberService) Invitations(ctx context.Context, userID string) ([]models.ProjectMember, error) {
	var invitations []models.ProjectMember
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ? AND accepted = ?", userID, false).
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// Accept turns the caller's pending invitation into an accepted membership.
// No capability check applies: the invitation belongs to the invitee alone.
func (s *MemberService) Accept(ctx context.Context, userID, memberID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.takeOwnInvitation(tx, userID, memberID, &member); err != nil {
			return err
		}

		member.Accepted = true
		member.JoinedAt = time.Now()
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}

		return repository.RecordAudit(tx, &member, "Joined the project")
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Deny removes the caller's pending invitation.
func (s *MemberService) Deny(ctx context.Context, userID, memberID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := s.takeOwnInvitation(tx, userID, memberID, &member); err != nil {
			return err
		}
		return tx.Delete(&member).Error
	})
}

// takeOwnInvitation loads a pending membership row that must belong to the
// caller. Anything else is Forbidden, never NotFound.
func (s *MemberService) takeOwnInvitation(tx *gorm.DB, userID, memberID string, member *models.ProjectMember) error {
	err := tx.Take(member, "id = ?", memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.ErrForbidden
		}
		return fmt.Errorf("failed to load invitation: %w", err)
	}
	if member.UserID != userID {
		return authz.ErrForbidden
	}
	if member.Accepted {
		return ErrNotInvited
	}
	return nil
}

// UpdatePermissions replaces a member's capability set. Requires EDIT_PROJECT.
func (s *MemberService) UpdatePermissions(ctx context.Context, actorUserID, memberID string, perms uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Take(&member, "id = ?", memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrForbidden
			}
			return fmt.Errorf("failed to load member: %w", err)
		}

		grant, err := authz.Authorize(tx, repository.EntityProject, member.ProjectID, actorUserID, permissions.EditProject, false)
		if err != nil {
			return err
		}

		member.Permissions = permissions.FromBits(perms).Bits()
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to update permissions: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Changed '%s's permissions", member.User.Username))
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Remove deletes another member from their project, clearing any sub-task
// assignments pointing at them first.
func (s *MemberService) Remove(ctx context.Context, actorUserID, memberID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := tx.Preload("User").Take(&member, "id = ?", memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrForbidden
			}
			return fmt.Errorf("failed to load member: %w", err)
		}

		grant, err := authz.Authorize(tx, repository.EntityProject, member.ProjectID, actorUserID, permissions.RemoveMembers, false)
		if err != nil {
			return err
		}
		if member.UserID == actorUserID {
			return ErrCannotRemoveYourself
		}

		var project models.Project
		if err := tx.Take(&project, "id = ?", member.ProjectID).Error; err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if project.Owner == member.UserID {
			return ErrCannotRemoveOwner
		}

		if err := s.deleteMembership(tx, &member); err != nil {
			return err
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Removed '%s' from the project", member.User.Username))
	})
}

// Leave removes the caller's own accepted membership. The owner must transfer
// ownership first.
func (s *MemberService) Leave(ctx context.Context, userID, projectID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		err := tx.Preload("User").Take(&member, "project_id = ? AND user_id = ? AND accepted = ?", projectID, userID, true).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrForbidden
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}

		var project models.Project
		if err := tx.Take(&project, "id = ?", projectID).Error; err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if project.Owner == userID {
			return ErrOwnerCannotLeave
		}

		if err := repository.RecordAudit(tx, &member, fmt.Sprintf("'%s' left the project", member.User.Username)); err != nil {
			return err
		}

		return s.deleteMembership(tx, &member)
	})
}

// deleteMembership nulls out the member wherever they appear as an assignee,
// then deletes the row. Authored content is left untouched.
func (s *MemberService) deleteMembership(tx *gorm.DB, member *models.ProjectMember) error {
	err := tx.Model(&models.SubTask{}).
		Where("assignee = ?", member.ID).
		Update("assignee", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	if err := tx.Delete(&models.ProjectMember{}, "id = ?", member.ID).Error; err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}
