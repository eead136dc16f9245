package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/config"
)

// Router wraps a chi router with handler configuration
type Router struct {
	chi     chi.Router
	handler *Handler
}

// NewRouter creates a new Router with the given dependencies
func NewRouter(svc *catalog.Service, cfg *config.Config, logger *zap.Logger) *Router {
	handler := NewHandler(svc, cfg, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Long-lived socket; no request timeout.
	r.Get("/live", handler.Live)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/health", handler.Health)
		r.Get("/status", handler.Status)
		r.Post("/search", handler.Search)
		r.Get("/autocomplete", handler.Autocomplete)
		r.Get("/abbreviations/unmapped", handler.Unmapped)

		r.Route("/rooms/{id}", func(r chi.Router) {
			r.Get("/", handler.Room)
			r.Get("/tags", handler.ListTags)
			r.Post("/tags", handler.AddTag)
			r.Delete("/tags/{tagID}", handler.DeleteTag)
		})
	})

	return &Router{
		chi:     r,
		handler: handler,
	}
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.chi.ServeHTTP(w, req)
}
