package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiblingScope identifies one ordered collection of children: task groups
// under a project, tasks under a task group, or sub-tasks under a task.
// Positions within a scope are always the dense range 0..n-1.
type SiblingScope struct {
	table       string
	scopeColumn string
	scopeID     string
	parentTable string
}

func TaskGroupsOf(projectID string) SiblingScope {
	return SiblingScope{
		table:       "task_groups",
		scopeColumn: "project_id",
		scopeID:     projectID,
		parentTable: "projects",
	}
}

func TasksOf(taskGroupID string) SiblingScope {
	return SiblingScope{
		table:       "tasks",
		scopeColumn: "task_group_id",
		scopeID:     taskGroupID,
		parentTable: "task_groups",
	}
}

func SubTasksOf(taskID string) SiblingScope {
	return SiblingScope{
		table:       "sub_tasks",
		scopeColumn: "task_id",
		scopeID:     taskID,
		parentTable: "tasks",
	}
}

// Ordering serialises position mutations within a sibling scope. Every method
// must be called inside the transaction that performs the accompanying row
// mutation, so a crash can never leave a gap or duplicate behind.
type Ordering struct {
	tx *gorm.DB
}

func NewOrdering(tx *gorm.DB) *Ordering {
	return &Ordering{tx: tx}
}

// lockScope takes a row lock on the parent entity so two concurrent inserts
// into the same scope cannot both read the same next position. SQLite has no
// FOR UPDATE; its database-level write lock serialises writers on its own.
func (o *Ordering) lockScope(scope SiblingScope) error {
	switch o.tx.Dialector.Name() {
	case "postgres", "mysql":
	default:
		return nil
	}

	var row struct{ ID string }
	err := o.tx.Table(scope.parentTable).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", scope.scopeID).
		Take(&row).Error
	if err != nil {
		return fmt.Errorf("failed to lock %s %s: %w", scope.parentTable, scope.scopeID, err)
	}
	return nil
}

// NextPosition returns the position one past the current last child, which is
// also the number of children while the scope is dense.
func (o *Ordering) NextPosition(scope SiblingScope) (int, error) {
	var next int
	err := o.tx.Table(scope.table).
		Where(scope.scopeColumn+" = ?", scope.scopeID).
		Select("COALESCE(MAX(position), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read next position: %w", err)
	}
	return next, nil
}

// Append reserves the position at the end of the scope. The caller inserts
// the new row at the returned position.
func (o *Ordering) Append(scope SiblingScope) (int, error) {
	if err := o.lockScope(scope); err != nil {
		return 0, err
	}
	return o.NextPosition(scope)
}

// InsertAt opens a slot at position, shifting later siblings up by one. A
// position past the end clamps to append semantics so no gap can appear. The
// caller inserts the new row at the returned position.
func (o *Ordering) InsertAt(scope SiblingScope, position int) (int, error) {
	if err := o.lockScope(scope); err != nil {
		return 0, err
	}

	next, err := o.NextPosition(scope)
	if err != nil {
		return 0, err
	}
	if position < 0 {
		position = 0
	}
	if position >= next {
		return next, nil
	}

	err = o.tx.Table(scope.table).
		Where(scope.scopeColumn+" = ? AND position >= ?", scope.scopeID, position).
		Update("position", gorm.Expr("position + 1")).Error
	if err != nil {
		return 0, fmt.Errorf("failed to shift siblings up: %w", err)
	}
	return position, nil
}

// Move shifts the half-open interval between current and target by one in the
// appropriate direction. The caller updates the moved row to the returned
// position; siblings stay dense throughout.
func (o *Ordering) Move(scope SiblingScope, current, target int) (int, error) {
	if err := o.lockScope(scope); err != nil {
		return 0, err
	}

	next, err := o.NextPosition(scope)
	if err != nil {
		return 0, err
	}
	if target < 0 {
		target = 0
	}
	if target > next-1 {
		target = next - 1
	}
	if target == current {
		return current, nil
	}

	if target < current {
		err = o.tx.Table(scope.table).
			Where(scope.scopeColumn+" = ? AND position >= ? AND position < ?", scope.scopeID, target, current).
			Update("position", gorm.Expr("position + 1")).Error
	} else {
		err = o.tx.Table(scope.table).
			Where(scope.scopeColumn+" = ? AND position > ? AND position <= ?", scope.scopeID, current, target).
			Update("position", gorm.Expr("position - 1")).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to shift siblings: %w", err)
	}
	return target, nil
}

// CompactAfterDelete closes the gap left by a removed child.
func (o *Ordering) CompactAfterDelete(scope SiblingScope, deletedPosition int) error {
	if err := o.lockScope(scope); err != nil {
		return err
	}

	err := o.tx.Table(scope.table).
		Where(scope.scopeColumn+" = ? AND position > ?", scope.scopeID, deletedPosition).
		Update("position", gorm.Expr("position - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to compact positions: %w", err)
	}
	return nil
}
