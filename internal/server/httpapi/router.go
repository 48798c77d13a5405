// Package httpapi exposes the file management REST API consumed by the
// admin frontend, plus health and metrics endpoints.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/instashare/instashare/internal/server/config"
)

// NewRouter assembles the HTTP surface: /healthz and /metrics are open,
// everything under /admin requires a bearer token.
func NewRouter(cfg *config.Config, filesHandler *FilesHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(Authenticator([]byte(cfg.SecretKey)))
		filesHandler.RegisterRoutes(r)
	})

	return r
}
