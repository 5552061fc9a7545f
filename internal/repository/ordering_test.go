package repository

import (
	"fmt"
	"testing"

	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Project{},
		&models.TaskGroup{},
		&models.Task{},
		&models.SubTask{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Project{
		ID:    "proj0001",
		Name:  "Project",
		Owner: "owner001",
	}).Error)
	require.NoError(t, db.Create(&models.TaskGroup{
		ID:        "group00001",
		ProjectID: "proj0001",
		Name:      "Backlog",
	}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func seedTaskAt(t *testing.T, db *gorm.DB, id string, position int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Task{
		ID:          id,
		ProjectID:   "proj0001",
		TaskGroupID: "group00001",
		Name:        "Task " + id,
		Creator:     "owner001",
		Position:    position,
	}).Error)
}

// taskOrder returns the group's task ids sorted by position, requiring the
// positions to be exactly 0..n-1.
func taskOrder(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var tasks []models.Task
	require.NoError(t, db.Where("task_group_id = ?", "group00001").Order("position ASC").Find(&tasks).Error)

	ids := make([]string, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Position, "positions must stay dense")
		ids[i] = task.ID
	}
	return ids
}

func TestOrdering_AppendSequence(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	for i, id := range []string{"task000001", "task000002", "task000003"} {
		pos, err := ordering.Append(scope)
		require.NoError(t, err)
		require.Equal(t, i, pos)
		seedTaskAt(t, db, id, pos)
	}

	require.Equal(t, []string{"task000001", "task000002", "task000003"}, taskOrder(t, db))
}

func TestOrdering_AppendIntoEmptyScope(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)

	pos, err := ordering.Append(TasksOf("group00001"))
	require.NoError(t, err)
	require.Equal(t, 0, pos)
}

func TestOrdering_InsertAtHead(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)

	pos, err := ordering.InsertAt(scope, 0)
	require.NoError(t, err)
	require.Equal(t, 0, pos)
	seedTaskAt(t, db, "task000003", pos)

	require.Equal(t, []string{"task000003", "task000001", "task000002"}, taskOrder(t, db))
}

func TestOrdering_InsertPastEndClampsToAppend(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)

	pos, err := ordering.InsertAt(scope, 99)
	require.NoError(t, err)
	require.Equal(t, 2, pos)
	seedTaskAt(t, db, "task000003", pos)

	require.Equal(t, []string{"task000001", "task000002", "task000003"}, taskOrder(t, db))
}

func TestOrdering_InsertAtNegativeClampsToHead(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)

	pos, err := ordering.InsertAt(scope, -5)
	require.NoError(t, err)
	require.Equal(t, 0, pos)
}

func TestOrdering_MoveForward(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)
	seedTaskAt(t, db, "task000003", 2)

	// Move the head to the tail: the two behind it shift down.
	pos, err := ordering.Move(scope, 0, 2)
	require.NoError(t, err)
	require.Equal(t, 2, pos)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", "task000001").Update("position", pos).Error)

	require.Equal(t, []string{"task000002", "task000003", "task000001"}, taskOrder(t, db))
}

func TestOrdering_MoveBackward(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)
	seedTaskAt(t, db, "task000003", 2)

	pos, err := ordering.Move(scope, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 0, pos)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", "task000003").Update("position", pos).Error)

	require.Equal(t, []string{"task000003", "task000001", "task000002"}, taskOrder(t, db))
}

func TestOrdering_MoveClampsPastEnd(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)

	pos, err := ordering.Move(scope, 0, 42)
	require.NoError(t, err)
	require.Equal(t, 1, pos)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", "task000001").Update("position", pos).Error)

	require.Equal(t, []string{"task000002", "task000001"}, taskOrder(t, db))
}

func TestOrdering_MoveToSamePositionIsNoOp(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)

	pos, err := ordering.Move(scope, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, pos)

	require.Equal(t, []string{"task000001", "task000002"}, taskOrder(t, db))
}

func TestOrdering_CompactAfterDelete(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)
	seedTaskAt(t, db, "task000002", 1)
	seedTaskAt(t, db, "task000003", 2)

	require.NoError(t, db.Delete(&models.Task{}, "id = ?", "task000002").Error)
	require.NoError(t, ordering.CompactAfterDelete(scope, 1))

	require.Equal(t, []string{"task000001", "task000003"}, taskOrder(t, db))
}

func TestOrdering_DeleteSoleChildLeavesEmptyScope(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)
	scope := TasksOf("group00001")

	seedTaskAt(t, db, "task000001", 0)

	require.NoError(t, db.Delete(&models.Task{}, "id = ?", "task000001").Error)
	require.NoError(t, ordering.CompactAfterDelete(scope, 0))

	next, err := ordering.NextPosition(scope)
	require.NoError(t, err)
	require.Equal(t, 0, next)
}

func TestOrdering_ScopesAreIndependent(t *testing.T) {
	db := setupOrderingTestDB(t)
	ordering := NewOrdering(db)

	require.NoError(t, db.Create(&models.TaskGroup{
		ID:        "group00002",
		ProjectID: "proj0001",
		Name:      "Doing",
		Position:  1,
	}).Error)

	for i := 0; i < 3; i++ {
		seedTaskAt(t, db, fmt.Sprintf("task00000%d", i+1), i)
	}

	// The sibling group is untouched by activity next door.
	next, err := ordering.NextPosition(TasksOf("group00002"))
	require.NoError(t, err)
	require.Equal(t, 0, next)
}
