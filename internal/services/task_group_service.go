package services

import (
	"context"
	"fmt"

	"github.com/herelius/project-tracker-api/internal/authz"
	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/permissions"
	"github.com/herelius/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// TaskGroupService manages the ordered task groups within a project.
type TaskGroupService struct {
	db *gorm.DB
}

// NewTaskGroupService creates a new TaskGroupService.
func NewTaskGroupService(db *gorm.DB) *TaskGroupService {
	return &TaskGroupService{db: db}
}

// CreateTaskGroupInput represents parameters to create a task group.
// Position nil appends at the end; otherwise the group is inserted at that
// position and later siblings shift up.
type CreateTaskGroupInput struct {
	Name     string
	Position *int
}

// Create adds a task group to a project. Requires CREATE_TASK_GROUPS.
func (s *TaskGroupService) Create(ctx context.Context, userID, projectID string, input CreateTaskGroupInput) (*models.TaskGroup, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	var group models.TaskGroup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityProject, projectID, userID, permissions.CreateTaskGroups, false)
		if err != nil {
			return err
		}

		ordering := repository.NewOrdering(tx)
		scope := repository.TaskGroupsOf(projectID)

		var position int
		if input.Position == nil {
			position, err = ordering.Append(scope)
		} else {
			position, err = ordering.InsertAt(scope, *input.Position)
		}
		if err != nil {
			return err
		}

		groupID, err := repository.GenerateID(tx, "task_groups", repository.TaskGroupIDLength)
		if err != nil {
			return err
		}

		group = models.TaskGroup{
			ID:        groupID,
			ProjectID: projectID,
			Name:      input.Name,
			Position:  position,
		}
		if err := tx.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to create task group: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Created task group '%s'", group.Name))
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Get returns a single task group.
func (s *TaskGroupService) Get(ctx context.Context, userID, groupID string) (*models.TaskGroup, error) {
	db := s.db.WithContext(ctx)

	if _, err := authz.Authorize(db, repository.EntityTaskGroup, groupID, userID, permissions.ReadProject, true); err != nil {
		return nil, err
	}

	var group models.TaskGroup
	if err := db.Take(&group, "id = ?", groupID).Error; err != nil {
		return nil, fmt.Errorf("failed to load task group: %w", err)
	}
	return &group, nil
}

// ListByProject returns a project's task groups in position order, each with
// its tasks and their sub-tasks, also in position order.
func (s *TaskGroupService) ListByProject(ctx context.Context, userID, projectID string) ([]models.TaskGroup, error) {
	db := s.db.WithContext(ctx)

	if _, err := authz.Authorize(db, repository.EntityProject, projectID, userID, permissions.ReadProject, true); err != nil {
		return nil, err
	}

	var groups []models.TaskGroup
	err := db.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.position ASC")
		}).
		Preload("Tasks.SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_tasks.position ASC")
		}).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list task groups: %w", err)
	}
	return groups, nil
}

// EditTaskGroupInput holds the optional fields Edit may change.
type EditTaskGroupInput struct {
	Name     *string
	Position *int
}

// Edit renames and/or moves a task group. Requires CREATE_TASK_GROUPS.
func (s *TaskGroupService) Edit(ctx context.Context, userID, groupID string, input EditTaskGroupInput) (*models.TaskGroup, error) {
	var group models.TaskGroup
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTaskGroup, groupID, userID, permissions.CreateTaskGroups, false)
		if err != nil {
			return err
		}

		if err := tx.Take(&group, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to load task group: %w", err)
		}

		if input.Name != nil && *input.Name != group.Name {
			if err := validateName(*input.Name); err != nil {
				return err
			}
			body := fmt.Sprintf("Changed task group name from '%s' to '%s'", group.Name, *input.Name)
			group.Name = *input.Name
			if err := repository.RecordAudit(tx, grant.Member, body); err != nil {
				return err
			}
		}

		if input.Position != nil {
			ordering := repository.NewOrdering(tx)
			newPos, err := ordering.Move(repository.TaskGroupsOf(group.ProjectID), group.Position, *input.Position)
			if err != nil {
				return err
			}
			group.Position = newPos
			if err := repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Moved task group '%s'", group.Name)); err != nil {
				return err
			}
		}

		if err := tx.Save(&group).Error; err != nil {
			return fmt.Errorf("failed to update task group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a task group, its tasks and their sub-tasks, then compacts
// sibling positions. Requires DELETE_TASK_GROUPS.
func (s *TaskGroupService) Delete(ctx context.Context, userID, groupID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTaskGroup, groupID, userID, permissions.DeleteTaskGroups, false)
		if err != nil {
			return err
		}

		var group models.TaskGroup
		if err := tx.Take(&group, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to load task group: %w", err)
		}

		var taskIDs []string
		err = tx.Model(&models.Task{}).Where("task_group_id = ?", groupID).Pluck("id", &taskIDs).Error
		if err != nil {
			return fmt.Errorf("failed to list group tasks: %w", err)
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.SubTask{}).Error; err != nil {
				return fmt.Errorf("failed to delete sub tasks: %w", err)
			}
			if err := tx.Where("task_group_id = ?", groupID).Delete(&models.Task{}).Error; err != nil {
				return fmt.Errorf("failed to delete tasks: %w", err)
			}
		}

		if err := tx.Delete(&models.TaskGroup{}, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to delete task group: %w", err)
		}

		ordering := repository.NewOrdering(tx)
		if err := ordering.CompactAfterDelete(repository.TaskGroupsOf(group.ProjectID), group.Position); err != nil {
			return err
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Removed task group '%s'", group.Name))
	})
}
