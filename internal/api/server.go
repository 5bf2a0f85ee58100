// Package api serves the scoring engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xaenox/kindred/internal/service"
)

type ServerConfig struct {
	Addr         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

type Server struct {
	svc        *service.Service
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
	startTime  time.Time
}

// NewServer builds the router. gatherer backs GET /metrics and may be nil to
// use the default registry.
func NewServer(svc *service.Service, gatherer prometheus.Gatherer, cfg ServerConfig, logger *zap.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		svc:       svc,
		engine:    engine,
		logger:    logger,
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	s.routes(engine.Group("/v1"))

	return s
}

func (s *Server) routes(v1 *gin.RouterGroup) {
	analysis := v1.Group("/analysis")
	analysis.POST("", s.analyze)
	analysis.POST("/answer", s.scoreAnswer)
	analysis.POST("/follow-up", s.followUp)

	authed := v1.Group("", s.requireUser)

	authed.POST("/users", s.createUser)
	authed.GET("/users/me", s.getMe)
	authed.PUT("/users/me/status", s.setStatus)
	authed.GET("/users/:id/profile", s.getUserProfile)
	authed.GET("/users/:id/trust", s.getUserTrust)
	authed.GET("/users/:id/safety-signals", s.getSafetySignals)

	authed.POST("/profile", s.createProfile)
	authed.GET("/profile", s.getProfile)
	authed.PATCH("/profile", s.updateProfile)
	authed.GET("/profile/strength", s.getStrength)
	authed.GET("/profile/photos", s.listPhotos)
	authed.POST("/profile/photos", s.addPhoto)
	authed.DELETE("/profile/photos/:id", s.deletePhoto)
	authed.GET("/profile/prompts", s.listPrompts)
	authed.POST("/profile/prompts", s.addPrompt)

	authed.GET("/discover", s.discover)
	authed.POST("/likes/:userId", s.like)
	authed.POST("/passes/:userId", s.pass)

	authed.GET("/matches", s.listMatches)
	authed.GET("/matches/:id", s.getMatch)
	authed.GET("/matches/:id/messages", s.listMessages)
	authed.POST("/matches/:id/messages", s.sendMessage)
	authed.POST("/matches/:id/read", s.markRead)
	authed.POST("/matches/:id/dates", s.scheduleDate)
	authed.GET("/matches/:id/safety-check", s.preDateCheck)
	authed.GET("/messages/unread", s.unreadCount)

	authed.GET("/trust", s.getTrust)

	authed.POST("/reports", s.report)
	authed.POST("/blocks", s.block)

	authed.GET("/onboarding/questions", s.questions)
	authed.GET("/onboarding/progress", s.progress)
	authed.POST("/onboarding/answers", s.submitAnswer)
	authed.POST("/onboarding/complete", s.completeOnboarding)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}
