// Package api provides the HTTP API server for the NVR dashboard.
// It uses the Echo framework to serve the resolver, stats and container
// endpoints plus a WebSocket stream for live stats.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/nvrdash/nvrdash/internal/auth"
	"github.com/nvrdash/nvrdash/internal/backup"
	"github.com/nvrdash/nvrdash/internal/config"
	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/internal/resolve"
	"github.com/nvrdash/nvrdash/internal/stats"
)

// Server represents the dashboard API server.
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	resolver   *resolve.Service
	aggregator *stats.Aggregator
	docker     *probe.Docker
	backup     *backup.Proxy
	log        zerolog.Logger
}

// New creates a new API server instance. docker and backupProxy may be
// nil; the routes that need them then answer 503.
func New(cfg *config.Config, resolver *resolve.Service, aggregator *stats.Aggregator, docker *probe.Docker, backupProxy *backup.Proxy, log zerolog.Logger) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:       e,
		config:     cfg,
		resolver:   resolver,
		aggregator: aggregator,
		docker:     docker,
		backup:     backupProxy,
		log:        log,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(RequestLogger(s.log))
	s.echo.Use(SecurityHeaders)

	if len(s.config.Server.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Server.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	if s.config.Server.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Server.RateLimit),
		)))
	}
}

// setupRoutes configures API routes. Everything under /api sits behind
// basic auth; /health stays open for load balancers and systemd.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api")
	api.Use(auth.Middleware(s.config.Auth, auth.NewChecker(s.config.Auth)))

	api.GET("/hardware", s.getHardware)
	api.GET("/stats", s.getStats)
	api.GET("/stats/ws", s.streamStats)
	api.GET("/network", s.getNetwork)
	api.GET("/storage", s.getStorage)
	api.GET("/identity", s.getIdentity)

	containers := api.Group("/containers")
	containers.GET("", s.listContainers)
	containers.GET("/:name/logs", s.getContainerLogs)
	containers.POST("/:name/start", s.startContainer)
	containers.POST("/:name/stop", s.stopContainer)
	containers.POST("/:name/restart", s.restartContainer)

	api.POST("/system/restart", s.restartSystem)

	api.GET("/backup/*", s.proxyBackupGet)
	api.POST("/backup/*", s.proxyBackupPost)
}

// Start starts the HTTP server. When the configured TLS material cannot
// be loaded the server logs the failure and serves plain HTTP so the
// dashboard stays reachable.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	if s.tlsUsable() {
		s.log.Info().Str("addr", addr).Msg("starting HTTPS server")
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}

	s.log.Info().Str("addr", addr).Msg("starting HTTP server")
	return s.echo.Start(addr)
}

func (s *Server) tlsUsable() bool {
	if s.config.Server.TLSCert == "" || s.config.Server.TLSKey == "" {
		return false
	}
	for _, p := range []string{s.config.Server.TLSCert, s.config.Server.TLSKey} {
		if _, err := os.Stat(p); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("TLS material unreadable, falling back to HTTP")
			return false
		}
	}
	return true
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if s.docker != nil {
		if err := s.docker.Close(); err != nil {
			return fmt.Errorf("error closing runtime client: %w", err)
		}
	}
	return nil
}

// healthCheck handles health check requests. It always answers 200;
// degraded subsystems show up in the body, not the status code, so a
// half-broken appliance still reports in.
func (s *Server) healthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	runtimeUp := s.docker != nil && s.docker.Available(ctx)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"service":           "nvrdash",
		"instance_id":       s.aggregator.InstanceID(),
		"container_runtime": runtimeUp,
	})
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
