package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/elchinm/attendance-gate/internal/web/handlers"
	"github.com/elchinm/attendance-gate/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Dependencies) {
	attendanceHandler := handlers.NewAttendanceHandler(deps.Attendance, deps.Uploads)
	webhookHandler := handlers.NewWebhookHandler(deps.Registry, deps.Bot, s.config.Messages.Telegram)
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Uploads)
	workersHandler := handlers.NewWorkersHandler(deps.Workers, deps.Uploads, deps.Index)
	allowListHandler := handlers.NewAllowListHandler(deps.Registry, deps.AllowList)
	salaryHandler := handlers.NewSalaryHandler(deps.SalaryRules, deps.Salary)
	identifyHandler := handlers.NewIdentifyHandler(deps.Index)

	// Public surface.
	s.router.Get("/api/health", handlers.HealthCheck)
	s.router.Post("/api/attendance", attendanceHandler.Submit)
	s.router.Post("/telegram/webhook", webhookHandler.Handle)

	// Stored images (event shots and reference shots).
	if deps.Uploads != nil {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Uploads.Root())))
		s.router.Get("/uploads/*", fs.ServeHTTP)
	}

	// Admin API behind basic auth.
	s.router.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth(s.config.Admin.User, s.config.Admin.Password))

		r.Get("/events", eventsHandler.List)
		r.Delete("/events/{id}", eventsHandler.Delete)

		r.Get("/workers", workersHandler.List)
		r.Post("/workers", workersHandler.Create)
		r.Get("/workers/{id}", workersHandler.Get)
		r.Put("/workers/{id}/active", workersHandler.SetActive)
		r.Post("/workers/{id}/reference", workersHandler.SetReference)
		r.Delete("/workers/{id}", workersHandler.Delete)

		r.Get("/allowlist", allowListHandler.List)
		r.Post("/allowlist", allowListHandler.Add)
		r.Delete("/allowlist/{id}", allowListHandler.Remove)

		r.Get("/salary/rules", salaryHandler.ListRules)
		r.Post("/salary/rules", salaryHandler.UpsertRule)
		r.Delete("/salary/rules/{id}", salaryHandler.DeactivateRule)
		r.Get("/salary.xlsx", salaryHandler.Report)

		r.Post("/identify", identifyHandler.Identify)
	})
}
