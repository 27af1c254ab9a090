// Package http exposes invoice upload and report download over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	UploadDir     string // served under /uploads when set
	MaxUploadSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  120 * time.Second,
		MaxUploadSize: 50 << 20,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config       ServerConfig
	httpServer   *http.Server
	router       *gin.Engine
	applications ApplicationService
	invoices     InvoiceService
	reports      ReportService
	logger       *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, applications ApplicationService, invoices InvoiceService, reports ReportService, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadSize

	server := &Server{
		config:       config,
		router:       router,
		applications: applications,
		invoices:     invoices,
		reports:      reports,
		logger:       logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.applications, s.invoices, s.reports, s.config.MaxUploadSize, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	if s.config.UploadDir != "" {
		s.router.Static("/uploads", s.config.UploadDir)
	}

	api := s.router.Group("/api")
	{
		api.POST("/invoices/upload", handlers.UploadInvoice)
		api.POST("/invoices/manual", handlers.AddManualInvoice)
		api.POST("/invoices/extract", handlers.ExtractInvoice)
		api.POST("/invoices/batch_update", handlers.BatchUpdateInvoices)
		api.POST("/invoices/:id/update", handlers.UpdateInvoice)

		api.POST("/users", handlers.CreateUser)

		api.POST("/applications", handlers.CreateApplication)
		api.GET("/applications/:id", handlers.GetApplication)
		api.POST("/applications/:id/submit", handlers.SubmitApplication)
		api.POST("/applications/:id/mark_paid", handlers.MarkApplicationPaid)
		api.GET("/applications/:id/report", handlers.DownloadReport)
		api.GET("/applications/:id/workbook", handlers.DownloadWorkbook)
	}
}

// Start serves until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
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
