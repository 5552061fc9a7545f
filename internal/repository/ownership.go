package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// EntityKind is the closed set of hierarchy entities an endpoint can be
// addressed by. Keeping it closed means the owning-project lookup never
// builds SQL from request data.
type EntityKind int

const (
	EntityProject EntityKind = iota
	EntityTaskGroup
	EntityTask
	EntitySubTask
)

func (k EntityKind) Table() string {
	switch k {
	case EntityProject:
		return "projects"
	case EntityTaskGroup:
		return "task_groups"
	case EntityTask:
		return "tasks"
	case EntitySubTask:
		return "sub_tasks"
	}
	panic(fmt.Sprintf("unknown entity kind %d", k))
}

// ResolveProjectID maps any entity id in the hierarchy to its owning
// project's id. Returns gorm.ErrRecordNotFound when no such entity exists;
// callers translate that to Forbidden so child ids in other projects are not
// enumerable.
func ResolveProjectID(tx *gorm.DB, kind EntityKind, entityID string) (string, error) {
	if kind == EntityProject {
		var row struct{ ID string }
		if err := tx.Table("projects").Select("id").Where("id = ?", entityID).Take(&row).Error; err != nil {
			return "", err
		}
		return row.ID, nil
	}

	var row struct{ ProjectID string }
	if err := tx.Table(kind.Table()).Select("project_id").Where("id = ?", entityID).Take(&row).Error; err != nil {
		return "", err
	}
	return row.ProjectID, nil
}
