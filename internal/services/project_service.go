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
	"github.com/herelius/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var ErrNotProjectOwner = errors.New("only the project owner can do this")

// ProjectService provides business logic for project operations. Every
// mutation runs membership resolution, the change itself and the audit entry
// in one transaction.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService creates a new ProjectService.
func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name              string
	IconURL           string
	PublicPermissions uint64
}

// Create creates a project owned by userID, together with the owner's
// full-permission membership.
func (s *ProjectService) Create(ctx context.Context, userID string, input CreateProjectInput) (*models.Project, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectID, err := repository.GenerateID(tx, "projects", repository.ProjectIDLength)
		if err != nil {
			return err
		}

		project = models.Project{
			ID:                projectID,
			Name:              input.Name,
			Owner:             userID,
			IconURL:           input.IconURL,
			PublicPermissions: permissions.FromBits(input.PublicPermissions).Bits(),
		}
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		memberID, err := repository.GenerateID(tx, "project_members", repository.MemberIDLength)
		if err != nil {
			return err
		}

		member := models.ProjectMember{
			ID:          memberID,
			ProjectID:   projectID,
			UserID:      userID,
			Permissions: permissions.All.Bits(),
			Accepted:    true,
			JoinedAt:    time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create owner membership: %w", err)
		}

		return repository.RecordAudit(tx, &member, fmt.Sprintf("Created project '%s'", project.Name))
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Get returns a project if the caller may read it. Anonymous callers get
// through only when the project grants public read access.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*models.Project, *authz.Grant, error) {
	db := s.db.WithContext(ctx)

	grant, err := authz.Authorize(db, repository.EntityProject, projectID, userID, permissions.ReadProject, true)
	if err != nil {
		return nil, nil, err
	}

	var project models.Project
	if err := db.Take(&project, "id = ?", projectID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load project: %w", err)
	}
	return &project, grant, nil
}

// ListForUser returns every project the user holds an accepted membership in,
// with the membership itself.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]models.ProjectMember, error) {
	var memberships []models.ProjectMember
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ? AND accepted = ?", userID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// UpdateProjectInput holds the optional fields Update may change.
type UpdateProjectInput struct {
	Name              *string
	IconURL           *string
	PublicPermissions *uint64
}

// Update edits a project's settings. Requires EDIT_PROJECT.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, input UpdateProjectInput) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityProject, projectID, userID, permissions.EditProject, false)
		if err != nil {
			return err
		}

		if err := tx.Take(&project, "id = ?", projectID).Error; err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		if input.Name != nil && *input.Name != project.Name {
			if err := validateName(*input.Name); err != nil {
				return err
			}
			body := fmt.Sprintf("Renamed project '%s' to '%s'", project.Name, *input.Name)
			project.Name = *input.Name
			if err := repository.RecordAudit(tx, grant.Member, body); err != nil {
				return err
			}
		}
		if input.IconURL != nil {
			project.IconURL = *input.IconURL
		}
		if input.PublicPermissions != nil {
			project.PublicPermissions = permissions.FromBits(*input.PublicPermissions).Bits()
		}

		if err := tx.Save(&project).Error; err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, "Updated project settings")
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// TransferOwnership hands the project to another accepted member. Only the
// current owner can do this.
func (s *ProjectService) TransferOwnership(ctx context.Context, userID, projectID, newOwnerMemberID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityProject, projectID, userID, permissions.EditProject, false)
		if err != nil {
			return err
		}

		var project models.Project
		if err := tx.Take(&project, "id = ?", projectID).Error; err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if project.Owner != userID {
			return ErrNotProjectOwner
		}

		var target models.ProjectMember
		err = tx.Take(&target, "id = ? AND project_id = ? AND accepted = ?", newOwnerMemberID, projectID, true).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return authz.ErrForbidden
			}
			return fmt.Errorf("failed to load new owner: %w", err)
		}

		err = tx.Model(&models.Project{}).Where("id = ?", projectID).Update("owner", target.UserID).Error
		if err != nil {
			return fmt.Errorf("failed to transfer ownership: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, "Transferred project ownership")
	})
}

// Delete removes a project and everything that exists only in its context:
// sub-tasks, tasks, task groups, memberships and the audit log itself.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authz.Authorize(tx, repository.EntityProject, projectID, userID, permissions.DeleteProject, false); err != nil {
			return err
		}

		for _, step := range []struct {
			model any
			desc  string
		}{
			{&models.SubTask{}, "sub tasks"},
			{&models.Task{}, "tasks"},
			{&models.TaskGroup{}, "task groups"},
			{&models.ProjectMember{}, "members"},
			{&models.Audit{}, "audit log"},
		} {
			if err := tx.Where("project_id = ?", projectID).Delete(step.model).Error; err != nil {
				return fmt.Errorf("failed to delete project %s: %w", step.desc, err)
			}
		}

		if err := tx.Delete(&models.Project{}, "id = ?", projectID).Error; err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// Audits returns a page of the project's audit log, newest first.
func (s *ProjectService) Audits(ctx context.Context, userID, projectID string, params utils.PaginationParams) ([]models.Audit, int64, error) {
	db := s.db.WithContext(ctx)

	if _, err := authz.Authorize(db, repository.EntityProject, projectID, userID, permissions.ReadProject, true); err != nil {
		return nil, 0, err
	}

	return repository.ListAudits(db, projectID, params.Offset, params.Limit)
}
