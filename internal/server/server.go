package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/siddarthal/AiHackathon/internal/config"
	"github.com/siddarthal/AiHackathon/internal/service"
)

// Server exposes the assistant service over HTTP.
type Server struct {
	cfg     *config.AppConfig
	service *service.Service
	router  *gin.Engine
}

func New(cfg *config.AppConfig, svc *service.Service) *Server {
	s := &Server{cfg: cfg, service: svc}
	s.buildRouter()
	return s
}

func (s *Server) buildRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/config", s.handleConfig)
	router.POST("/ask", s.handleAsk)
	router.POST("/chat", s.handleChat)
	router.POST("/complete", s.handleComplete)
	router.POST("/reindex", s.handleReindex)

	s.router = router
}

// Handler exposes the routed engine, used directly by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
