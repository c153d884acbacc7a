package server

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"task-user-service/cmd/api/di"
	"task-user-service/internal/config"
)

// Server holds the HTTP server of the API
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(cfg, c, httpAddress(cfg), l),
	}
}

// Start serves HTTP until the server is shut down
func (s *Server) Start() error {
	s.Logger.Info("REST API running",
		zap.String("address", s.HTTP.Addr),
		zap.String("api_prefix", s.Config.App.APIPrefix),
	)
	if s.Config.App.SwaggerSpecPath != "" {
		s.Logger.Info("Swagger UI available at", zap.String("url", "http://localhost"+s.HTTP.Addr+"/swagger/index.html"))
	}

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
