// Package web exposes the HTTP surface: the attendance submission endpoint,
// the Telegram webhook, the admin API, and the stored image routes.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/elchinm/attendance-gate/internal/attendance"
	"github.com/elchinm/attendance-gate/internal/config"
	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/salary"
	"github.com/elchinm/attendance-gate/internal/storage"
	"github.com/elchinm/attendance-gate/internal/subscription"
	"github.com/elchinm/attendance-gate/internal/telegram"
	"github.com/elchinm/attendance-gate/internal/web/middleware"
)

// Dependencies carries everything the handlers need.
type Dependencies struct {
	Attendance  *attendance.Service
	Registry    *subscription.Registry
	Bot         *telegram.Client // nil when the bot token is not configured
	Workers     database.WorkerStore
	Events      database.EventStore
	AllowList   database.AllowListStore
	SalaryRules database.SalaryRuleStore
	Salary      *salary.Calculator
	Index       *database.DescriptorIndex
	Uploads     *storage.Store
}

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	r := chi.NewRouter()

	s := &Server{
		config: cfg,
		router: r,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())

	s.setupRoutes(deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
