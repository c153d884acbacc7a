package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-user-service/cmd/api/infrastructure"
	"task-user-service/internal/adapter/cache"
	"task-user-service/internal/adapter/db/postgres"
	ginhandler "task-user-service/internal/adapter/gin/handler"
	"task-user-service/internal/adapter/gin/middleware"
	"task-user-service/internal/adapter/repository/cached"
	"task-user-service/internal/config"
	"task-user-service/internal/usecase/reconcile"
	"task-user-service/internal/usecase/task"
	"task-user-service/internal/usecase/user"
	redisclient "task-user-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	TaskUC      task.Usecase
	RateLimiter *middleware.RateLimiter
	UserHandler *ginhandler.UserHandler
	TaskHandler *ginhandler.TaskHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c := &Container{Config: cfg, Logger: l, DB: db}

	if cfg.NeedsRedis() {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
	}

	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
			},
			l,
		)
	}

	// Repositories share the injected handle
	var userRepo cached.UserStore = postgres.NewUserRepoPG(db, l)
	if cfg.Cache.Enabled {
		userCache := cache.NewRedisUserCache(
			c.RedisClient.Client,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			l,
		)
		userRepo = cached.NewCachedUserRepository(userRepo, userCache, l)
	}
	taskRepo := postgres.NewTaskRepoPG(db, l)
	reconciler := reconcile.New(userRepo, taskRepo, l)

	c.UserUC = user.New(userRepo, reconciler, l)
	c.TaskUC = task.New(taskRepo, reconciler, l)

	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.TaskHandler = ginhandler.NewTaskHandler(c.TaskUC, cfg.App.TaskDefaultLimit, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
