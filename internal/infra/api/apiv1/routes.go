package apiv1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github-repo-mirror/internal/infra/api"
)

// RegisterAPIV1 mounts the API routes on r.
func RegisterAPIV1(r chi.Router, srv *Server) {
	r.Group(func(r chi.Router) {
		for _, mw := range srv.syncGuards {
			r.Use(mw)
		}
		r.Post("/sync/{username}", srv.SyncUser)
	})
	r.Get("/users/{username}/repositories", srv.ListUserRepositories)
	r.Get("/repositories/search", srv.SearchRepositories)
	r.Get("/statistics", srv.GetStatistics)
}

type RouterConfig struct {
	RequestTimeout time.Duration
	Health         http.Handler
}

// NewRouter builds the full handler: middleware stack, /health and the API.
func NewRouter(srv *Server, cfg RouterConfig, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(
		api.TraceID(),
		api.RequestLog(logger),
		api.Metrics(),
		api.Recover(logger),
		api.CORS(),
		api.Timeout(cfg.RequestTimeout),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	if cfg.Health != nil {
		r.Method(http.MethodGet, "/health", cfg.Health)
	}
	RegisterAPIV1(r, srv)
	return r
}
