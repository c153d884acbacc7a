package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"task-user-service/internal/adapter/gin/handler"
	"task-user-service/internal/adapter/gin/middleware"
	"task-user-service/pkg/logger"
)

const swaggerDocPath = "/swagger/doc.json"

// Options controls the parts of the router that vary between deployments.
type Options struct {
	ServiceName     string
	APIPrefix       string
	SwaggerSpecPath string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	taskHandler *handler.TaskHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.NoRoute(func(c *gin.Context) {
		handler.Fail(c, http.StatusNotFound, "Not found")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	if opts.SwaggerSpecPath != "" {
		ui := httpSwagger.Handler(httpSwagger.URL(swaggerDocPath))
		router.GET("/swagger/*any", func(c *gin.Context) {
			if c.Request.URL.Path == swaggerDocPath {
				c.File(opts.SwaggerSpecPath)
				return
			}
			ui(c.Writer, c.Request)
		})
	}

	api := router.Group(apiPrefix(opts.APIPrefix))
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}

	api.GET("/", describe)
	if api.BasePath() != "/" {
		api.GET("", describe)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.ReplaceUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.ReplaceTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	return router
}

func describe(c *gin.Context) {
	c.JSON(http.StatusOK, handler.Response{
		Message: "OK",
		Data:    gin.H{"api": "todo", "version": 1},
	})
}

func apiPrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
