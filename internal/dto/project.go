package dto

import (
	"time"

	"github.com/herelius/project-tracker-api/internal/models"
)

// ProjectDTO is the public shape of a project.
type ProjectDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Owner             string `json:"owner"`
	IconURL           string `json:"icon_url"`
	PublicPermissions uint64 `json:"public_permissions"`
}

// FromProject converts a project model to its DTO
func FromProject(project *models.Project) ProjectDTO {
	return ProjectDTO{
		ID:                project.ID,
		Name:              project.Name,
		Owner:             project.Owner,
		IconURL:           project.IconURL,
		PublicPermissions: project.PublicPermissions,
	}
}

// ProjectWithPermissionsDTO pairs a project with the capability set the
// caller holds on it.
type ProjectWithPermissionsDTO struct {
	ProjectDTO
	Permissions uint64 `json:"permissions"`
}

// MemberDTO is the public shape of a project membership.
type MemberDTO struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	Permissions uint64    `json:"permissions"`
	Accepted    bool      `json:"accepted"`
	JoinedAt    time.Time `json:"joined_at"`
}

// FromMember converts a membership model to its DTO
func FromMember(member *models.ProjectMember) MemberDTO {
	return MemberDTO{
		ID:          member.ID,
		ProjectID:   member.ProjectID,
		UserID:      member.UserID,
		Username:    member.User.Username,
		Permissions: member.Permissions,
		Accepted:    member.Accepted,
		JoinedAt:    member.JoinedAt,
	}
}

// InvitationDTO is a pending membership together with its project, as shown
// to the invitee.
type InvitationDTO struct {
	MemberDTO
	Project ProjectDTO `json:"project"`
}
