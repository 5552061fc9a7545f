package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/auth"
	"github.com/herelius/project-tracker-api/internal/config"
	"github.com/herelius/project-tracker-api/internal/database"
	"github.com/herelius/project-tracker-api/internal/handlers"
	"github.com/herelius/project-tracker-api/internal/middleware"
	"github.com/herelius/project-tracker-api/internal/repository"
	"github.com/herelius/project-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Token codec for bearer auth
	codec := auth.NewTokenCodec([]byte(cfg.TokenSecret), cfg.TokenTTL, nil)

	// Initialize services
	authService := services.NewAuthService(repository.NewUserRepository(db))
	projectService := services.NewProjectService(db)
	memberService := services.NewMemberService(db)
	taskGroupService := services.NewTaskGroupService(db)
	taskService := services.NewTaskService(db)
	subTaskService := services.NewSubTaskService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, codec)
	projectHandler := handlers.NewProjectHandler(projectService)
	memberHandler := handlers.NewMemberHandler(memberService)
	taskGroupHandler := handlers.NewTaskGroupHandler(taskGroupService)
	taskHandler := handlers.NewTaskHandler(taskService)
	subTaskHandler := handlers.NewSubTaskHandler(subTaskService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Tracker API is running",
		})
	})

	requireAuth := middleware.RequireAuth(codec)
	optionalAuth := middleware.OptionalAuth(codec)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Project routes. Reads allow anonymous access to public projects;
		// every mutation requires a bearer token.
		projects := api.Group("/projects")
		{
			projects.POST("", requireAuth, projectHandler.CreateProject)
			projects.GET("", requireAuth, projectHandler.ListProjects)
			projects.GET("/:id", optionalAuth, projectHandler.GetProject)
			projects.PATCH("/:id", requireAuth, projectHandler.UpdateProject)
			projects.DELETE("/:id", requireAuth, projectHandler.DeleteProject)
			projects.POST("/:id/transfer", requireAuth, projectHandler.TransferOwnership)
			projects.GET("/:id/audits", optionalAuth, projectHandler.GetAudits)
			projects.GET("/:id/members", optionalAuth, memberHandler.ListMembers)
			projects.POST("/:id/members", requireAuth, memberHandler.InviteMember)
			projects.POST("/:id/leave", requireAuth, memberHandler.LeaveProject)
			projects.GET("/:id/task-groups", optionalAuth, taskGroupHandler.ListTaskGroups)
			projects.POST("/:id/task-groups", requireAuth, taskGroupHandler.CreateTaskGroup)
		}

		// Invitation routes (invitee only, no project capability involved)
		invitations := api.Group("/invitations")
		invitations.Use(requireAuth)
		{
			invitations.GET("", memberHandler.ListInvitations)
			invitations.POST("/:id/accept", memberHandler.AcceptInvitation)
			invitations.POST("/:id/deny", memberHandler.DenyInvitation)
		}

		// Member routes
		members := api.Group("/members")
		members.Use(requireAuth)
		{
			members.PATCH("/:id/permissions", memberHandler.UpdateMemberPermissions)
			members.DELETE("/:id", memberHandler.RemoveMember)
		}

		// Task group routes
		taskGroups := api.Group("/task-groups")
		{
			taskGroups.GET("/:id", optionalAuth, taskGroupHandler.GetTaskGroup)
			taskGroups.PATCH("/:id", requireAuth, taskGroupHandler.EditTaskGroup)
			taskGroups.DELETE("/:id", requireAuth, taskGroupHandler.DeleteTaskGroup)
			taskGroups.POST("/:id/tasks", requireAuth, taskHandler.CreateTask)
		}

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("/:id", optionalAuth, taskHandler.GetTask)
			tasks.PATCH("/:id", requireAuth, taskHandler.EditTask)
			tasks.DELETE("/:id", requireAuth, taskHandler.DeleteTask)
			tasks.POST("/:id/sub-tasks", requireAuth, subTaskHandler.CreateSubTask)
		}

		// Sub-task routes
		subTasks := api.Group("/sub-tasks")
		subTasks.Use(requireAuth)
		{
			subTasks.PATCH("/:id", subTaskHandler.EditSubTask)
			subTasks.DELETE("/:id", subTaskHandler.DeleteSubTask)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
