package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/services"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	owner   *models.User
	project *models.Project
	group   *models.TaskGroup
}

func setupTaskFixture(t *testing.T, env testEnv) taskFixture {
	t.Helper()

	owner := createTestUser(t, env, "owner")
	project := createTestProject(t, env, owner.ID, "Board")

	group, err := env.taskGroupService.Create(context.Background(), owner.ID, project.ID, services.CreateTaskGroupInput{
		Name: "Backlog",
	})
	require.NoError(t, err)

	return taskFixture{owner: owner, project: project, group: group}
}

func taskNamesInOrder(t *testing.T, env testEnv, groupID string) []string {
	t.Helper()

	var tasks []models.Task
	require.NoError(t, env.db.Where("task_group_id = ?", groupID).Order("position ASC").Find(&tasks).Error)

	names := make([]string, len(tasks))
	for i, task := range tasks {
		require.Equal(t, i, task.Position)
		names[i] = task.Name
	}
	return names
}

func TestTaskHandler_CreateTask(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)

	payload := map[string]string{
		"name":           "Write docs",
		"information":    "Start with the API surface",
		"primary_colour": "#ff0000",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/v1/task-groups/"+fx.group.ID+"/tasks", body, fx.owner.ID, idParam(fx.group.ID))
	env.taskHandler.CreateTask(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.Equal(t, "Write docs", task.Name)
	require.Equal(t, fx.owner.ID, task.Creator)
	require.Equal(t, fx.project.ID, task.ProjectID)
	require.Equal(t, 0, task.Position)
}

func TestTaskHandler_GetTaskWithSubTasks(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)
	ctx := context.Background()

	task, err := env.taskService.Create(ctx, fx.owner.ID, fx.group.ID, services.CreateTaskInput{Name: "Parent"})
	require.NoError(t, err)

	for _, body := range []string{"first", "second"} {
		_, err := env.subTaskService.Create(ctx, fx.owner.ID, task.ID, services.CreateSubTaskInput{Body: body})
		require.NoError(t, err)
	}

	c, w := testContext(http.MethodGet, "/api/v1/tasks/"+task.ID, nil, fx.owner.ID, idParam(task.ID))
	env.taskHandler.GetTask(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.SubTasks, 2)
	require.Equal(t, "first", response.SubTasks[0].Body)
	require.Equal(t, "second", response.SubTasks[1].Body)
}

func TestTaskHandler_MoveWithinGroup(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)
	ctx := context.Background()

	var first *models.Task
	for i, name := range []string{"First", "Second", "Third"} {
		task, err := env.taskService.Create(ctx, fx.owner.ID, fx.group.ID, services.CreateTaskInput{Name: name})
		require.NoError(t, err)
		if i == 0 {
			first = task
		}
	}

	payload := map[string]int{"position": 2}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPatch, "/api/v1/tasks/"+first.ID, body, fx.owner.ID, idParam(first.ID))
	env.taskHandler.EditTask(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, []string{"Second", "Third", "First"}, taskNamesInOrder(t, env, fx.group.ID))
}

func TestTaskHandler_MoveAcrossGroups(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)
	ctx := context.Background()

	other, err := env.taskGroupService.Create(ctx, fx.owner.ID, fx.project.ID, services.CreateTaskGroupInput{Name: "Doing"})
	require.NoError(t, err)

	_, err = env.taskService.Create(ctx, fx.owner.ID, other.ID, services.CreateTaskInput{Name: "Existing"})
	require.NoError(t, err)

	var moved *models.Task
	for i, name := range []string{"Mover", "Stays"} {
		task, err := env.taskService.Create(ctx, fx.owner.ID, fx.group.ID, services.CreateTaskInput{Name: name})
		require.NoError(t, err)
		if i == 0 {
			moved = task
		}
	}

	payload := map[string]string{"task_group_id": other.ID}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPatch, "/api/v1/tasks/"+moved.ID, body, fx.owner.ID, idParam(moved.ID))
	env.taskHandler.EditTask(c)
	require.Equal(t, http.StatusOK, w.Code)

	// The task lands at the end of the target group; the old group compacts.
	require.Equal(t, []string{"Existing", "Mover"}, taskNamesInOrder(t, env, other.ID))
	require.Equal(t, []string{"Stays"}, taskNamesInOrder(t, env, fx.group.ID))
}

func TestTaskHandler_MoveToGroupInOtherProject(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)
	ctx := context.Background()

	otherProject := createTestProject(t, env, fx.owner.ID, "Elsewhere")
	foreignGroup, err := env.taskGroupService.Create(ctx, fx.owner.ID, otherProject.ID, services.CreateTaskGroupInput{Name: "Foreign"})
	require.NoError(t, err)

	task, err := env.taskService.Create(ctx, fx.owner.ID, fx.group.ID, services.CreateTaskInput{Name: "Stuck"})
	require.NoError(t, err)

	payload := map[string]string{"task_group_id": foreignGroup.ID}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPatch, "/api/v1/tasks/"+task.ID, body, fx.owner.ID, idParam(task.ID))
	env.taskHandler.EditTask(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	var reloaded models.Task
	require.NoError(t, env.db.Take(&reloaded, "id = ?", task.ID).Error)
	require.Equal(t, fx.group.ID, reloaded.TaskGroupID)
}

func TestTaskHandler_DeleteCompactsAndRemovesSubTasks(t *testing.T) {
	env := setupTestEnv(t)
	fx := setupTaskFixture(t, env)
	ctx := context.Background()

	var middle *models.Task
	for i, name := range []string{"First", "Second", "Third"} {
		task, err := env.taskService.Create(ctx, fx.owner.ID, fx.group.ID, services.CreateTaskInput{Name: name})
		require.NoError(t, err)
		if i == 1 {
			middle = task
		}
	}

	_, err := env.subTaskService.Create(ctx, fx.owner.ID, middle.ID, services.CreateSubTaskInput{Body: "Orphan"})
	require.NoError(t, err)

	c, w := testContext(http.MethodDelete, "/api/v1/tasks/"+middle.ID, nil, fx.owner.ID, idParam(middle.ID))
	env.taskHandler.DeleteTask(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, []string{"First", "Third"}, taskNamesInOrder(t, env, fx.group.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.SubTask{}).Count(&count).Error)
	require.Zero(t, count)
}
