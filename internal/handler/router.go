package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	custommiddleware "github.com/mmeshcher/sales-dashboard/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware панели продаж.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)

		r.Get("/", h.Dashboard)
		h.mountActions(r)

		r.Route("/api", func(r chi.Router) {
			if len(h.corsOrigins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   h.corsOrigins,
					AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
					AllowedHeaders:   []string{"Accept", "Content-Type"},
					AllowCredentials: true,
					MaxAge:           300,
				}))
			}

			r.Get("/dashboard", h.Snapshot)
			h.mountActions(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

func (h *Handler) mountActions(r chi.Router) {
	r.Post("/dates", h.action(h.setDates))
	r.Post("/dates/quick", h.action(h.setQuickRange))
	r.Post("/filters", h.action(h.setFilters))
	r.Post("/filters/clear", h.action(h.clearFilters))
	r.Post("/sort/{column}", h.action(h.toggleSort))
	r.Post("/page/next", h.action(h.nextPage))
	r.Post("/page/prev", h.action(h.prevPage))
	r.Post("/refresh", h.action(h.refresh))
}
