package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"automv/internal/config"
	"automv/internal/logging"
	"automv/internal/pipeline"
	"automv/internal/project"
	"automv/internal/services"
	"automv/internal/settings"
)

// Server exposes settings, projects, patching, and pipeline runs over HTTP.
type Server struct {
	cfg      *config.Config
	settings *settings.Store
	projects *project.Store
	orch     *pipeline.Orchestrator
	logger   *slog.Logger

	engine  *gin.Engine
	running atomic.Bool
}

// New builds the router. Nothing listens until Serve.
func New(cfg *config.Config, settingsStore *settings.Store, projects *project.Store, orch *pipeline.Orchestrator, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		settings: settingsStore,
		projects: projects,
		orch:     orch,
		logger:   logging.NewComponentLogger(logger, "api"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.MaxMultipartMemory = 8 << 20

	api := engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:name", s.handleGetProject)
	api.POST("/patches", s.handlePatches)
	api.POST("/runs", s.handleRun)
	api.GET("/logs", s.handleLogs)

	s.engine = engine
	return s
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on the configured bind address until ctx is cancelled. Run
// streams hold their connection open, so there is no write timeout.
func (s *Server) Serve(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.API.Bind)
	if bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "listen", "api.bind is empty", nil)
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.serveListener(ctx, listener)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api shutdown incomplete", logging.Error(err))
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(c.Request.Context(), level, "api request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
		)
	}
}

func statusFor(err error) int {
	switch services.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "busy":
		return http.StatusConflict
	case "configuration":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}
