package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/herelius/project-tracker-api/internal/authz"
	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/permissions"
	"github.com/herelius/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// ErrUnknownAssignee rejects an assignee that is not an accepted member of
// the sub-task's project.
var ErrUnknownAssignee = errors.New("assignee is not a member of this project")

// SubTaskService manages the ordered sub-tasks within a task.
type SubTaskService struct {
	db *gorm.DB
}

// NewSubTaskService creates a new SubTaskService.
func NewSubTaskService(db *gorm.DB) *SubTaskService {
	return &SubTaskService{db: db}
}

// CreateSubTaskInput represents parameters to create a sub-task. New
// sub-tasks always land at the end of their task.
type CreateSubTaskInput struct {
	Body     string
	Weight   int
	Assignee *string
}

// Create adds a sub-task to a task. Requires CREATE_TASKS.
func (s *SubTaskService) Create(ctx context.Context, userID, taskID string, input CreateSubTaskInput) (*models.SubTask, error) {
	var subTask models.SubTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntityTask, taskID, userID, permissions.CreateTasks, false)
		if err != nil {
			return err
		}

		if input.Assignee != nil {
			if err := s.checkAssignee(tx, grant.ProjectID, *input.Assignee); err != nil {
				return err
			}
		}

		ordering := repository.NewOrdering(tx)
		position, err := ordering.Append(repository.SubTasksOf(taskID))
		if err != nil {
			return err
		}

		subTaskID, err := repository.GenerateID(tx, "sub_tasks", repository.SubTaskIDLength)
		if err != nil {
			return err
		}

		subTask = models.SubTask{
			ID:        subTaskID,
			TaskID:    taskID,
			ProjectID: grant.ProjectID,
			Assignee:  input.Assignee,
			Body:      input.Body,
			Weight:    input.Weight,
			Position:  position,
		}
		if err := tx.Create(&subTask).Error; err != nil {
			return fmt.Errorf("failed to create sub task: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, "Created a sub task")
	})
	if err != nil {
		return nil, err
	}
	return &subTask, nil
}

// EditSubTaskInput holds the optional fields Edit may change. ClearAssignee
// unassigns the sub-task; it wins over Assignee.
type EditSubTaskInput struct {
	Body          *string
	Weight        *int
	Assignee      *string
	ClearAssignee bool
	Completed     *bool
	Position      *int
}

// Edit updates a sub-task. Requires EDIT_TASKS.
func (s *SubTaskService) Edit(ctx context.Context, userID, subTaskID string, input EditSubTaskInput) (*models.SubTask, error) {
	var subTask models.SubTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntitySubTask, subTaskID, userID, permissions.EditTasks, false)
		if err != nil {
			return err
		}

		if err := tx.Take(&subTask, "id = ?", subTaskID).Error; err != nil {
			return fmt.Errorf("failed to load sub task: %w", err)
		}

		if input.Body != nil {
			subTask.Body = *input.Body
		}
		if input.Weight != nil {
			subTask.Weight = *input.Weight
		}
		if input.Completed != nil {
			subTask.Completed = *input.Completed
		}
		switch {
		case input.ClearAssignee:
			subTask.Assignee = nil
		case input.Assignee != nil:
			if err := s.checkAssignee(tx, subTask.ProjectID, *input.Assignee); err != nil {
				return err
			}
			subTask.Assignee = input.Assignee
		}

		if input.Position != nil {
			ordering := repository.NewOrdering(tx)
			newPos, err := ordering.Move(repository.SubTasksOf(subTask.TaskID), subTask.Position, *input.Position)
			if err != nil {
				return err
			}
			subTask.Position = newPos
		}

		if err := tx.Save(&subTask).Error; err != nil {
			return fmt.Errorf("failed to update sub task: %w", err)
		}

		return repository.RecordAudit(tx, grant.Member, "Edited a sub task")
	})
	if err != nil {
		return nil, err
	}
	return &subTask, nil
}

// Delete removes a sub-task and compacts sibling positions. Requires
// DELETE_TASKS.
func (s *SubTaskService) Delete(ctx context.Context, userID, subTaskID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, err := authz.Authorize(tx, repository.EntitySubTask, subTaskID, userID, permissions.DeleteTasks, false)
		if err != nil {
			return err
		}

		var subTask models.SubTask
		if err := tx.Take(&subTask, "id = ?", subTaskID).Error; err != nil {
			return fmt.Errorf("failed to load sub task: %w", err)
		}

		if err := tx.Delete(&models.SubTask{}, "id = ?", subTaskID).Error; err != nil {
			return fmt.Errorf("failed to delete sub task: %w", err)
		}

		ordering := repository.NewOrdering(tx)
		if err := ordering.CompactAfterDelete(repository.SubTasksOf(subTask.TaskID), subTask.Position); err != nil {
			return err
		}

		return repository.RecordAudit(tx, grant.Member, "Removed a sub task")
	})
}

// checkAssignee verifies the assignee id refers to an accepted member of the
// project.
func (s *SubTaskService) checkAssignee(tx *gorm.DB, projectID, memberID string) error {
	var count int64
	err := tx.Model(&models.ProjectMember{}).
		Where("id = ? AND project_id = ? AND accepted = ?", memberID, projectID, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	if count == 0 {
		return ErrUnknownAssignee
	}
	return nil
}
