package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/config"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/internal/server"
	redisClient "github.com/satyaranjan2005/Taskmanager-backend/shared/redis"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/token"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	// Released in order once the HTTP server has drained.
	var cleanups []func() error

	// Write store
	var (
		users repository.UserStore
		tasks repository.TaskStore
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath, logger.Warn)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get SQLite handle: %v", err)
		}
		cleanups = append(cleanups, sqlDB.Close)
		users = repository.NewGormUserRepository(db)
		tasks = repository.NewGormTaskRepository(db)
		log.Printf("Using SQLite database at %s", cfg.SQLitePath)
	default:
		db, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		cleanups = append(cleanups, db.Close)
		users = repository.NewUserWriteRepository(db)
		tasks = repository.NewTaskWriteRepository(db)
		log.Println("Connected to PostgreSQL")
	}

	// Redis connection (read model cache + event streaming), optional
	var redis *redisClient.Client
	if cfg.RedisEnabled() {
		redis, err = redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cleanups = append(cleanups, redis.Close)
	} else {
		log.Println("REDIS_ADDR not set, caching and events disabled")
	}

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialise tokens: %v", err)
	}

	router := server.NewRouter(server.Options{
		Users:         users,
		Tasks:         tasks,
		Redis:         redis.Universal(),
		Tokens:        tokens,
		Hasher:        utils.NewPasswordHasher(cfg.BcryptCost),
		StatsCacheTTL: cfg.StatsCacheTTL,
		UserCacheTTL:  cfg.UserCacheTTL,
		CORSOrigins:   cfg.CORSOrigins,
		Development:   cfg.Development(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Printf("Task Manager API starting on port %s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Println("Shutting down...")
			err := srv.Shutdown(ctx)
			for _, cleanup := range cleanups {
				if cerr := cleanup(); cerr != nil {
					err = errors.Join(err, cerr)
				}
			}
			return err
		},
	})

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
