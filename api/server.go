/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for log correlation
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/people/*           Roster management
  /api/qualifications/*   Qualification records
  /api/types              Qualification type catalog
  /api/import/*           Bulk import and audit log
  /api/query              Filtered roster query
  /api/reports/*          Readiness and roster reports
  /api/backup             Snapshot export/restore

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public;
  deploy behind the unit's reverse proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Roster routes
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)
			r.Put("/{id}", h.UpdatePerson)
			r.Delete("/{id}", h.DeletePerson)
			r.Get("/{id}/qualifications", h.ListPersonQualifications)
		})

		// Qualification record routes
		r.Route("/qualifications", func(r chi.Router) {
			r.Post("/", h.CreateQualification)
			r.Delete("/{id}", h.DeleteQualification)
		})

		r.Get("/types", h.ListTypes)

		// Import routes
		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", h.PreviewImport)
			r.Post("/people", h.ImportPeople)
			r.Post("/qualifications", h.ImportQualifications)
			r.Get("/log", h.ListImportLog)
		})

		r.Post("/query", h.QueryRoster)

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/readiness", h.ReadinessReport)
			r.Get("/roster.csv", h.RosterCSV)
		})

		// Backup routes
		r.Get("/backup", h.ExportBackup)
		r.Post("/backup", h.RestoreBackup)
	})

	return r
}
