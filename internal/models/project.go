package models

import (
	"time"

	"github.com/herelius/project-tracker-api/internal/permissions"
)

type Project struct {
	ID      string `gorm:"primaryKey;type:varchar(8)" json:"id"`
	Name    string `gorm:"type:varchar(30);not null" json:"name"`
	Owner   string `gorm:"type:varchar(8);not null" json:"owner"`
	IconURL string `gorm:"type:varchar(255)" json:"icon_url"`
	// PublicPermissions is the capability set granted to non-members on
	// read-only operations. Zero means the project is private.
	PublicPermissions uint64    `gorm:"not null;default:0" json:"public_permissions"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	Members    []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	TaskGroups []TaskGroup     `gorm:"foreignKey:ProjectID" json:"task_groups,omitempty"`
}

// Public reports whether anonymous callers get any read access at all.
func (p *Project) Public() bool {
	return permissions.FromBits(p.PublicPermissions) != permissions.None
}
