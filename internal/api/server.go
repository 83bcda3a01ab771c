// Package api exposes the async analysis job surface over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claimlens/internal/model"
	"claimlens/internal/worker"
)

// analyzeRequest is the body of POST /api/analyze
type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Server wires the job manager to the HTTP routes
type Server struct {
	manager *worker.Manager
	cfg     model.ServerConfig
	logger  *slog.Logger
	engine  *gin.Engine
}

// NewServer builds the gin engine with all routes registered
func NewServer(manager *worker.Manager, cfg model.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		manager: manager,
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
	}

	engine.GET("/health", s.handleHealth)

	apiGroup := engine.Group("/api")
	apiGroup.POST("/analyze", newRateLimiter(cfg.AnalyzePerMinute).middleware(), s.handleAnalyze)
	apiGroup.GET("/status/:job_id", s.handleStatus)

	return s
}

// Handler returns the http.Handler for serving and for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	return s.engine.Run(s.cfg.Addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": model.AppVersion,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	jobID, err := s.manager.Submit(req.Text)
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis queue full, retry later"})
			return
		}
		s.logger.Error("job submission failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "submitted",
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, ok := s.manager.Status(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job id"})
		return
	}

	c.JSON(http.StatusOK, job)
}
