// Package http exposes the donation desk over HTTP: REST resources, the
// document method endpoint, the record desk and the payment webhook.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/donation-desk/internal/application/service"
	"github.com/garyjia/donation-desk/internal/form"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	WebhookPath  string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		WebhookPath:  "/webhooks/razorpay",
	}
}

// Dependencies are the application services and adapters served over HTTP
type Dependencies struct {
	Donations service.DonationService
	Donors    service.DonorService
	Settings  service.SettingsService
	Export    service.ExportService
	Registry  *form.Registry
	Methods   *MethodRouter
	Auth      *Auth

	// Webhook handles gateway deliveries; the route is skipped when nil
	Webhook gin.HandlerFunc

	// Health reports backing store health; nil means always healthy
	Health func(ctx context.Context) error
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	deps       Dependencies
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, deps Dependencies, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if deps.Auth == nil {
		deps.Auth = NewAuth("", logger)
	}
	if deps.Registry == nil {
		deps.Registry = form.NewRegistry(logger)
	}
	if deps.Methods == nil {
		deps.Methods = NewMethodRouter(deps.Donations, deps.Donors, logger)
	}

	server := &Server{
		config: config,
		router: gin.New(),
		deps:   deps,
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.SetHTMLTemplate(deskTemplate)
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.deps, s.logger)
	desk := NewDesk(s.deps.Registry, s.deps.Methods, handlers, s.logger)

	s.router.GET("/health", handlers.HealthCheck)
	if s.deps.Webhook != nil && s.config.WebhookPath != "" {
		s.router.POST(s.config.WebhookPath, s.deps.Webhook)
	}

	session := s.deps.Auth.Middleware()
	systemOnly := RequireSystemUser()

	api := s.router.Group("/api", session)
	{
		api.GET("/donations", handlers.ListDonations)
		api.POST("/donations", handlers.CreateDonation)
		api.GET("/donations/export.xlsx", systemOnly, handlers.ExportDonations)
		api.GET("/donations/:name", handlers.GetDonation)
		api.POST("/donations/:name/submit", handlers.SubmitDonation)
		api.POST("/donations/:name/payment-authorized", systemOnly, handlers.PaymentAuthorized)

		api.POST("/donors", handlers.CreateDonor)
		api.GET("/donors/:name", handlers.GetDonor)

		api.GET("/settings", handlers.GetSettings)
		api.PUT("/settings", systemOnly, handlers.UpdateSettings)

		api.POST("/method/:doctype/:name/:method", systemOnly, handlers.CallMethod)
	}

	deskGroup := s.router.Group("/desk", session, systemOnly)
	{
		deskGroup.GET("/:doctype/:name", desk.Show)
		deskGroup.POST("/:doctype/:name/actions/:action", desk.Act)
	}
}

// Start starts the HTTP server and blocks until ctx is done or serving fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
