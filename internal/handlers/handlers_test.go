package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/auth"
	"github.com/herelius/project-tracker-api/internal/database"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/models"
	"github.com/herelius/project-tracker-api/internal/permissions"
	"github.com/herelius/project-tracker-api/internal/repository"
	"github.com/herelius/project-tracker-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	codec *auth.TokenCodec

	authHandler      *AuthHandler
	projectHandler   *ProjectHandler
	memberHandler    *MemberHandler
	taskGroupHandler *TaskGroupHandler
	taskHandler      *TaskHandler
	subTaskHandler   *SubTaskHandler

	authService      *services.AuthService
	projectService   *services.ProjectService
	memberService    *services.MemberService
	taskGroupService *services.TaskGroupService
	taskService      *services.TaskService
	subTaskService   *services.SubTaskService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.TaskGroup{},
		&models.Task{},
		&models.SubTask{},
		&models.Audit{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	codec := auth.NewTokenCodec([]byte("test-secret"), time.Hour, nil)

	authService := services.NewAuthService(repository.NewUserRepository(db))
	projectService := services.NewProjectService(db)
	memberService := services.NewMemberService(db)
	taskGroupService := services.NewTaskGroupService(db)
	taskService := services.NewTaskService(db)
	subTaskService := services.NewSubTaskService(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return testEnv{
		db:               db,
		codec:            codec,
		authHandler:      NewAuthHandler(authService, codec),
		projectHandler:   NewProjectHandler(projectService),
		memberHandler:    NewMemberHandler(memberService),
		taskGroupHandler: NewTaskGroupHandler(taskGroupService),
		taskHandler:      NewTaskHandler(taskService),
		subTaskHandler:   NewSubTaskHandler(subTaskService),
		authService:      authService,
		projectService:   projectService,
		memberService:    memberService,
		taskGroupService: taskGroupService,
		taskService:      taskService,
		subTaskService:   subTaskService,
	}
}

// testContext builds a gin context for a handler call. userID may be empty
// for anonymous requests; params become path parameters.
func testContext(method, url string, body []byte, userID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if userID != "" {
		middleware.SetUserID(c, userID)
	}

	return c, w
}

func idParam(value string) gin.Param {
	return gin.Param{Key: "id", Value: value}
}

func createTestUser(t *testing.T, env testEnv, username string) *models.User {
	t.Helper()

	user, err := env.authService.Register(services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func createTestProject(t *testing.T, env testEnv, ownerID, name string) *models.Project {
	t.Helper()

	project, err := env.projectService.Create(context.Background(), ownerID, services.CreateProjectInput{
		Name: name,
	})
	require.NoError(t, err)
	return project
}

// addAcceptedMember invites and immediately accepts so tests can focus on
// what the member does afterwards.
func addAcceptedMember(t *testing.T, env testEnv, ownerID string, project *models.Project, user *models.User, perms permissions.Permissions) *models.ProjectMember {
	t.Helper()
	ctx := context.Background()

	member, err := env.memberService.Invite(ctx, ownerID, project.ID, user.Username)
	require.NoError(t, err)

	member, err = env.memberService.Accept(ctx, user.ID, member.ID)
	require.NoError(t, err)

	member, err = env.memberService.UpdatePermissions(ctx, ownerID, member.ID, perms.Bits())
	require.NoError(t, err)
	return member
}
