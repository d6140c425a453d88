// Package server wires the interpreter host, its HTTP API and the
// ambient infrastructure into one runnable service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/interphost/backend/internal/api/http"
	"github.com/interphost/backend/internal/api/middleware"
	"github.com/interphost/backend/internal/config"
	"github.com/interphost/backend/internal/engine"
	"github.com/interphost/backend/internal/interp"
	"github.com/interphost/backend/internal/logging"
	"github.com/interphost/backend/internal/monitoring"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	host    *interp.Host
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	httpSrv *http.Server
}

// NewServer creates a server instance from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing interphost",
		zap.String("port", cfg.Server.Port),
		zap.Int("max_contexts", cfg.Host.MaxContexts),
	)

	metrics := monitoring.NewMetrics()

	settings := engine.DefaultSettings()
	settings.StackLimit = cfg.Host.StackLimit

	host, err := interp.NewHost(interp.Options{
		Settings:    settings,
		MaxContexts: cfg.Host.MaxContexts,
		Logger:      logger.Named("interp"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter host: %w", err)
	}
	metrics.SetContextsLive(host.Stats().Live)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router:  router,
		host:    host,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	handlers := apihttp.NewHandlers(s.host, s.logger.Named("api"), s.metrics)

	s.router.GET("/", handlers.Root)
	s.router.GET("/health", handlers.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	contexts := s.router.Group("/contexts")
	{
		contexts.POST("", handlers.CreateContext)
		contexts.GET("", handlers.ListContexts)
		contexts.GET("/current", handlers.CurrentContext)
		contexts.GET("/main", handlers.MainContext)
		contexts.DELETE("/:id", handlers.DestroyContext)
		contexts.GET("/:id/running", handlers.IsRunning)
		contexts.POST("/:id/run", handlers.RunString)
	}
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Close shuts the server down gracefully and tears down every context.
func (s *Server) Close() error {
	s.logger.Info("shutting down")

	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
	}

	if err := s.host.Close(); err != nil {
		return err
	}
	_ = s.logger.Sync()
	return nil
}
