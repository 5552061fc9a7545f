package permissions

import "errors"

// Permissions is a fixed-width set of project capabilities, stored in the
// database as a plain integer on each membership row.
type Permissions uint64

const (
	ReadProject Permissions = 1 << iota
	CreateTasks
	EditTasks
	DeleteTasks
	CreateTaskGroups
	DeleteTaskGroups
	UploadFiles
	RemoveFiles
	InviteMembers
	RemoveMembers
	EditProject
	DeleteProject
)

// All is every recognised capability bit.
const All = ReadProject | CreateTasks | EditTasks | DeleteTasks |
	CreateTaskGroups | DeleteTaskGroups | UploadFiles | RemoveFiles |
	InviteMembers | RemoveMembers | EditProject | DeleteProject

// DefaultMember is granted to newly invited members until a project admin
// changes it.
const DefaultMember = ReadProject | CreateTasks | EditTasks | UploadFiles

// PublicRead is granted to non-members of a public project on read-only
// operations.
const PublicRead = ReadProject

// None is the empty set.
const None Permissions = 0

// ErrMissingPermissions is returned by Check when the set does not cover the
// required capabilities.
var ErrMissingPermissions = errors.New("missing required permissions")

// FromBits decodes a stored integer into a Permissions set. Bits that do not
// correspond to a known capability are dropped rather than rejected, so a row
// written by a newer schema degrades to the subset this build understands.
func FromBits(raw uint64) Permissions {
	return Permissions(raw) & All
}

// Bits returns the integer form used for storage.
func (p Permissions) Bits() uint64 {
	return uint64(p)
}

// Contains reports whether every bit in required is present in p.
func (p Permissions) Contains(required Permissions) bool {
	return p&required == required
}

// Check returns ErrMissingPermissions unless p covers required.
func (p Permissions) Check(required Permissions) error {
	if !p.Contains(required) {
		return ErrMissingPermissions
	}
	return nil
}

// Union returns the combination of p and other.
func (p Permissions) Union(other Permissions) Permissions {
	return p | other
}
