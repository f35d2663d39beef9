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
  1. Logger:        Request logging
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. RequestID:     Unique ID per request for tracing
  4. CORS:          Cross-origin requests for frontend
  5. Authenticator: Bearer token to identity (per /api group)

ROUTE GROUPS:
  /api/negotiations/*   Lifecycle, closure, termination, invoices
  /api/templates/*      Project templates
  /api/projects/*       Project instantiation
  /api/invoices/*       Overdue listing
  /api/admin/*          Sweep audit and trigger

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authentication
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticator(jwtSecret))

		// Negotiation routes
		r.Route("/negotiations", func(r chi.Router) {
			r.Get("/", h.ListNegotiations)
			r.Post("/", h.CreateNegotiation)
			r.Get("/{id}", h.GetNegotiation)
			r.Post("/{id}/transitions", h.RequestTransition)
			r.Get("/{id}/invoices", h.ListNegotiationInvoices)

			// Two-step closure
			r.Post("/{id}/close", h.BeginClosure)
			r.Post("/{id}/close/confirm", h.ConfirmClosure)

			// Two-step termination
			r.Post("/{id}/terminate", h.BeginTermination)
			r.Post("/{id}/terminate/confirm", h.ConfirmTermination)

			// Follow-up maintenance proposal
			r.Post("/{id}/maintenance", h.AcceptMaintenance)
		})

		// Template routes
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Get("/{id}", h.GetTemplate)
		})

		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Post("/preview", h.PreviewProject)
			r.Post("/", h.CreateProject)
			r.Get("/{id}/tasks", h.GetProjectTasks)
		})

		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/overdue", h.ListOverdueInvoices)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/sweeps", h.ListSweepRuns)
			r.Post("/sweeps/run", h.TriggerSweep)
		})
	})

	return r
}
