package models

import (
	"time"

	"github.com/herelius/project-tracker-api/internal/permissions"
)

type ProjectMember struct {
	ID          string `gorm:"primaryKey;type:varchar(10)" json:"id"`
	ProjectID   string `gorm:"type:varchar(8);index:idx_project_members_project_user,unique;not null" json:"project_id"`
	UserID      string `gorm:"type:varchar(8);index:idx_project_members_project_user,unique;index;not null" json:"user_id"`
	Permissions uint64 `gorm:"not null;default:0" json:"permissions"`
	// Accepted is false while the invitation is pending. A pending member has
	// no capabilities at all; the row exists only so the invitee can accept
	// or deny it.
	Accepted bool      `gorm:"not null;default:false" json:"accepted"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PermissionSet decodes the stored bits, dropping anything unrecognised.
func (m *ProjectMember) PermissionSet() permissions.Permissions {
	return permissions.FromBits(m.Permissions)
}
