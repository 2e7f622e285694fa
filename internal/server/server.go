// Package server is the local admin web console.
//
// @title Job Platform Admin Console
// @version 1.0
// @description Server-rendered admin console for the job-board backend
// @host localhost:5173
// @BasePath /
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/config"
	"github.com/fiitjobs/jobadmin/internal/guard"
	"github.com/fiitjobs/jobadmin/internal/models"
	"github.com/fiitjobs/jobadmin/internal/probe"
	"github.com/fiitjobs/jobadmin/internal/session"
	"github.com/fiitjobs/jobadmin/internal/shell"
)

//go:embed static
var staticFS embed.FS

const (
	loginPath = "/login"
	homePath  = "/dashboard"
)

// Server represents the admin console HTTP server
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	sessions  *session.Context
	binding   *guard.Binding
	unbind    func()
	api       *backend.Client
	shell     *shell.Shell
	viewport  *shell.Hub
	pages     *pageSet
	version   string
}

// New creates a new console server. The shell is mounted on the viewport hub
// for the lifetime of the server.
func New(cfg *config.Config, zlog zerolog.Logger, sessions *session.Context, api *backend.Client, version string) (*Server, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		return models.ValidApplicationStatus(fl.Field().String())
	})

	// The browser binding dies with the session, whatever ended it
	binding := guard.NewBinding()
	unbind := sessions.Subscribe(func(e session.Event) {
		if !e.Current.Authenticated() {
			binding.Revoke()
		}
	})

	sh := shell.New(cfg.UI.CompactBreakpoint)
	hub := shell.NewHub(0)
	sh.Mount(hub)

	server := &Server{
		config:    cfg,
		logger:    zlog,
		validator: validate,
		sessions:  sessions,
		binding:   binding,
		unbind:    unbind,
		api:       api,
		shell:     sh,
		viewport:  hub,
		pages:     pages,
		version:   version,
	}

	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(trustedHostMiddleware(consoleHosts(s.config.Server.ListenAddr, s.config.Server.TrustedHosts)))

	// CORS for the viewport beacon when the console is embedded elsewhere.
	// Requests from any other foreign origin are rejected with 403.
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	static, _ := fs.Sub(staticFS, "static")
	s.router.StaticFS("/static", http.FS(static))

	// Public endpoints
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/", s.root)
	s.router.GET(loginPath, guard.RedirectIfAuthenticated(s.sessions, s.binding, homePath), s.showLogin)
	s.router.POST(loginPath, s.login)
	s.router.POST("/logout", s.logout)
	s.router.POST("/ui/viewport", s.reportViewport)
	s.router.POST("/ui/sidebar/toggle", s.toggleSidebar)

	// Protected console screens
	console := s.router.Group("/")
	console.Use(guard.Require(s.sessions, s.binding, loginPath, s.logger))
	{
		console.GET("/dashboard", s.dashboard)

		// Users
		console.GET("/users", s.listUsers)
		console.GET("/admin/users/:id", s.userDetails)
		console.POST("/admin/users/:id/delete", s.deleteUser)
		console.POST("/admin/users/:id/toggle-suspicious", s.toggleSuspicious)

		// Jobs
		console.GET("/jobs", s.listJobs)
		console.GET("/admin/jobs", s.listJobs)
		console.GET("/jobs/add", s.newJob)
		console.POST("/jobs/add", s.createJob)
		console.GET("/admin/jobs/add", s.newJob)
		console.POST("/admin/jobs/add", s.createJob)
		console.GET("/admin/jobs/:id", s.jobDetails)
		console.GET("/admin/jobs/edit/:id", s.editJob)
		console.POST("/admin/jobs/edit/:id", s.updateJob)
		console.POST("/admin/jobs/:id/delete", s.deleteJob)

		// Applications
		console.GET("/applications", s.listApplications)
		console.POST("/applications/:id/status", s.updateApplicationStatus)
		console.POST("/applications/:id/notify", s.notifyApplicant)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "online",
		"timestamp":     time.Now().UTC(),
		"service":       "jobadmin-console",
		"version":       s.version,
		"authenticated": s.sessions.Current().Authenticated(),
	})
}

func (s *Server) root(c *gin.Context) {
	c.Redirect(http.StatusFound, loginPath)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Shell returns the layout shell driven by this server
func (s *Server) Shell() *shell.Shell {
	return s.shell
}

// Start verifies the stored credential if configured, starts the optional
// probe schedule and serves until SIGINT/SIGTERM or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if !isLoopbackAddr(s.config.Server.ListenAddr) {
		s.logger.Warn().
			Str("addr", s.config.Server.ListenAddr).
			Msg("Console is listening on a non-loopback address; traffic including the login form is unencrypted")
	}

	if s.config.Session.VerifyOnStartup {
		result := probe.Verify(ctx, s.sessions, s.api, s.logger)
		s.logger.Info().Str("result", string(result)).Msg("Startup credential check")
	}

	var scheduler *probe.Scheduler
	if expr := s.config.Session.ProbeSchedule; expr != "" {
		var err error
		scheduler, err = probe.NewScheduler(expr, s.sessions, s.api, s.logger)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.config.Backend.Timeout + 30*time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("Starting admin console")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case <-ctx.Done():
		s.logger.Info().Msg("Context cancelled, shutting down...")
	case serveErr = <-errChan:
		s.logger.Error().Err(serveErr).Msg("HTTP server error")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.shell.Unmount()
	s.unbind()
	s.logger.Info().Msg("Server shutdown complete")

	return serveErr
}
