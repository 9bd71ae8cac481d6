/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local frontend

ROUTE GROUPS:
  /api/control          Control parameters
  /api/definitions/*    Definition management
  /api/projection/*     Projection results
  /api/goal             Goal scenarios
  /api/scenarios/*      Demo scenarios
  /metrics              Prometheus metrics

SECURITY NOTE:
  No authentication middleware. Bind to localhost.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/cashflow/main.go: Server startup
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
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/control", h.GetControl)
		r.Put("/control", h.PutControl)

		r.Route("/definitions", func(r chi.Router) {
			r.Get("/", h.ListDefinitions)
			r.Post("/", h.CreateDefinition)
			r.Get("/{id}", h.GetDefinition)
			r.Delete("/{id}", h.DeleteDefinition)
		})

		r.Route("/projection", func(r chi.Router) {
			r.Get("/", h.GetProjection)
			r.Get("/production", h.GetProduction)
			r.Get("/pools", h.GetPools)
		})

		r.Get("/goal", h.GetGoal)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Method("GET", "/metrics", h.Metrics.Handler())

	return r
}
