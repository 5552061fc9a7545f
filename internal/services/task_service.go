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

// TaskService manages the ordered tasks within a task group.
type TaskService struct {
	db *gorm.DB
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// CreateTaskInput represents parameters to create a task. New tasks always
// land at the end of their group.
type CreateTaskInput struct {
	Name          string
	Information   string
	Due           *time.Time
	PrimaryColour string
	AccentColour  string
}

// Create adds a task to a task group. Requires CREATE_TASKS.
func (s *TaskService) Create(ctx context.Context, userID, taskGroupID string, input CreateTaskInput) (*models.Task, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTaskGroup, taskGroupID, userID, permissions.CreateTasks, false)
		if err != nil {
			return err
		}

		ordering := repository.NewOrdering(tx)
		position, err := ordering.Append(repository.TasksOf(taskGroupID))
		if err != nil {
			return err
		}

		taskID, err := repository.GenerateID(tx, "tasks", repository.TaskIDLength)
		if err != nil {
			return err
		}

		task = models.Task{
			ID:            taskID,
			ProjectID:     grant.ProjectID,
			TaskGroupID:   taskGroupID,
			Name:          input.Name,
			Information:   input.Information,
			Creator:       userID,
			Due:           input.Due,
			PrimaryColour: input.PrimaryColour,
			AccentColour:  input.AccentColour,
			Position:      position,
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Created task '%s'", task.Name))
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Get returns a task with its sub-tasks in position order.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	db := s.db.WithContext(ctx)

	if _, err := authz.Authorize(db, repository.EntityTask, taskID, userID, permissions.ReadProject, true); err != nil {
		return nil, err
	}

	var task models.Task
	err := db.
		Preload("SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_tasks.position ASC")
		}).
		Take(&task, "id = ?", taskID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return &task, nil
}

// EditTaskInput holds the optional fields Edit may change. Setting
// TaskGroupID moves the task to the end of another group in the same
// project; Position reorders it within its current group.
type EditTaskInput struct {
	Name          *string
	Information   *string
	Due           *time.Time
	PrimaryColour *string
	AccentColour  *string
	Position      *int
	TaskGroupID   *string
}

// Edit updates a task. Requires EDIT_TASKS.
func (s *TaskService) Edit(ctx context.Context, userID, taskID string, input EditTaskInput) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTask, taskID, userID, permissions.EditTasks, false)
		if err != nil {
			return err
		}

		if err := tx.Take(&task, "id = ?", taskID).Error; err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}

		if input.Name != nil && *input.Name != task.Name {
			if err := validateName(*input.Name); err != nil {
				return err
			}
			body := fmt.Sprintf("Renamed task '%s' to '%s'", task.Name, *input.Name)
			task.Name = *input.Name
			if err := repository.RecordAudit(tx, grant.Member, body); err != nil {
				return err
			}
		}
		if input.Information != nil {
			task.Information = *input.Information
		}
		if input.Due != nil {
			task.Due = input.Due
		}
		if input.PrimaryColour != nil {
			task.PrimaryColour = *input.PrimaryColour
		}
		if input.AccentColour != nil {
			task.AccentColour = *input.AccentColour
		}

		ordering := repository.NewOrdering(tx)

		if input.TaskGroupID != nil && *input.TaskGroupID != task.TaskGroupID {
			// Moving across groups: the target must live in the same
			// project, the old scope compacts, the task appends to the new
			// one.
			var target models.TaskGroup
			err := tx.Take(&target, "id = ? AND project_id = ?", *input.TaskGroupID, task.ProjectID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return authz.ErrForbidden
				}
				return fmt.Errorf("failed to load target group: %w", err)
			}

			if err := ordering.CompactAfterDelete(repository.TasksOf(task.TaskGroupID), task.Position); err != nil {
				return err
			}
			position, err := ordering.Append(repository.TasksOf(target.ID))
			if err != nil {
				return err
			}
			task.TaskGroupID = target.ID
			task.Position = position
			if err := repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Moved task '%s' to group '%s'", task.Name, target.Name)); err != nil {
				return err
			}
		} else if input.Position != nil {
			newPos, err := ordering.Move(repository.TasksOf(task.TaskGroupID), task.Position, *input.Position)
			if err != nil {
				return err
			}
			task.Position = newPos
			if err := repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Moved task '%s'", task.Name)); err != nil {
				return err
			}
		}

		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Edited task '%s'", task.Name))
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task and its sub-tasks, then compacts sibling positions.
// Requires DELETE_TASKS.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTask, taskID, userID, permissions.DeleteTasks, false)
		if err != nil {
			return err
		}

		var task models.Task
		if err := tx.Take(&task, "id = ?", taskID).Error; err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.SubTask{}).Error; err != nil {
			return fmt.Errorf("failed to delete sub tasks: %w", err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", taskID).Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		ordering := repository.NewOrdering(tx)
		if err := ordering.CompactAfterDelete(repository.TasksOf(task.TaskGroupID), task.Position); err != nil {
			return err
		}

		return repository.RecordAudit(tx, grant.Member, fmt.Sprintf("Removed task '%s'", task.Name))
	})
}
