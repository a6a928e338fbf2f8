// Package httpapi exposes the agent and the APOD client over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/internal/config"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

// Server serves the JSON API
type Server struct {
	router   *gin.Engine
	agent    *agent.Agent
	pictures *apod.Client
	settings *config.Settings
	logger   *pkgLogger.Logger
}

// NewServer creates the HTTP server and registers routes
func NewServer(settings *config.Settings, a *agent.Agent, pictures *apod.Client, logger *pkgLogger.Logger) *Server {
	if logger == nil {
		logger = pkgLogger.NewComponentLogger("http")
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:   router,
		agent:    a,
		pictures: pictures,
		settings: settings,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/image-of-the-day", s.handleImageOfTheDay)
		api.GET("/image-info/:date", s.handleImageInfo)
		api.GET("/search", s.handleSearch)
		api.POST("/ask", s.handleAsk)
		api.POST("/analyze-image", s.handleAnalyzeImage)
		api.GET("/context", s.handleContext)
		api.GET("/health", s.handleHealth)
		api.GET("/agent-status", s.handleAgentStatus)
		api.GET("/config-status", s.handleConfigStatus)
	}
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.settings.Server.Port)
	s.logger.InfoWithIcon("🚀", "Starting HTTP server", "address", addr)

	srv := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// Analysis requests wait on remote models.
		WriteTimeout: s.settings.Timeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
