// Package server wires the CQRS services into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/command"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/handler"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/query"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/events"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/middleware"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/token"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
)

const apiVersion = "1.0.0"

// Options holds everything the router needs. Redis may be nil, which turns
// the read-model caches and event publishing off.
type Options struct {
	Users         repository.UserStore
	Tasks         repository.TaskStore
	Redis         goredis.UniversalClient
	Tokens        *token.Manager
	Hasher        *utils.PasswordHasher
	StatsCacheTTL time.Duration
	UserCacheTTL  time.Duration
	CORSOrigins   []string
	Development   bool
}

func NewRouter(opts Options) *gin.Engine {
	// --- CQRS wiring ---
	publisher := events.NewPublisher(opts.Redis)

	userReadRepo := repository.NewUserReadRepository(opts.Users, opts.Redis, opts.UserCacheTTL)
	taskReadRepo := repository.NewTaskReadRepository(opts.Tasks, opts.Redis, opts.StatsCacheTTL)

	userCommands := command.NewUserCommandService(opts.Users, userReadRepo, opts.Hasher, opts.Tokens, publisher)
	taskCommands := command.NewTaskCommandService(opts.Tasks, taskReadRepo, publisher)
	authQueries := query.NewAuthQueryService(opts.Users, userReadRepo, opts.Hasher, opts.Tokens)
	userQueries := query.NewUserQueryService(userReadRepo)
	taskQueries := query.NewTaskQueryService(taskReadRepo)

	authHandler := handler.NewAuthHandler(userCommands, authQueries)
	taskHandler := handler.NewTaskHandler(taskCommands, taskQueries)
	userHandler := handler.NewUserHandler(userCommands, userQueries)

	// Setup router
	router := gin.New()
	router.Use(
		middleware.DevMode(opts.Development),
		middleware.Recovery(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(opts.CORSOrigins),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Task Manager API is running!",
			"version": apiVersion,
			"status":  "active",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/verify", authHandler.Verify)
	}

	protected := router.Group("/api", middleware.AuthMiddleware(authQueries))

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/stats", taskHandler.GetStats)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.PATCH("/:id/toggle", taskHandler.ToggleTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	users := protected.Group("/users")
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/change-password", userHandler.ChangePassword)
	}

	router.NoRoute(middleware.NotFound)
	return router
}
