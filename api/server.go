/*
server.go - Router assembly

PURPOSE:
  Mounts the analytics handlers on a chi router with the standard
  middleware stack: request IDs for tracing, request logging, panic
  recovery and a permissive CORS policy for browser dashboards.

SEE ALSO:
  - handlers.go: The handlers mounted here
  - cmd/server/main.go: Server lifecycle
*/
package api

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router for the analytics API.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/filters", h.dashboardFilters)
			r.Get("/summary", h.dashboardSummary)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/filters", h.analyticsFilters)
			r.Get("/summary", h.analyticsSummary)
			r.Get("/deep-dive", h.deepDive)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.listScenarios)
			r.Post("/load", h.loadScenario)
		})
	})

	return r
}

// recoverer converts a handler panic into the INTERNAL_ERROR envelope.
// A computation fault must never surface as a bare 500 outside the
// response contract.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeError(w, r, CodeInternalError, fmt.Sprintf("%v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
