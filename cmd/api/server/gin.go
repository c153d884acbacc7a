package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-user-service/cmd/api/di"
	ginrouter "task-user-service/internal/adapter/gin/router"
	"task-user-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(cfg *config.Config, c *di.Container, addr string, l *zap.Logger) *http.Server {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := ginrouter.SetupRouter(c.UserHandler, c.TaskHandler, ginrouter.Options{
		ServiceName:     cfg.Logger.ServiceName,
		APIPrefix:       cfg.App.APIPrefix,
		SwaggerSpecPath: cfg.App.SwaggerSpecPath,
		RateLimiter:     c.RateLimiter,
	}, l)

	l.Info("Gin REST API configured",
		zap.String("address", addr),
		zap.Bool("rate_limit", c.RateLimiter != nil),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
