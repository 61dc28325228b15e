package api

import (
	"io/fs"
	"net/http"

	"github.com/factchecker/misinfo-detector/internal/config"
	"github.com/factchecker/misinfo-detector/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter creates a new HTTP router with all routes configured. ui may be
// nil, in which case only the API is served.
func NewRouter(cfg *config.Config, handler *Handler, store database.Store, ui fs.FS) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(AuditMiddleware(store))

			analyze := r.With()
			if n := cfg.RateLimits.RequestsPerMinute; n > 0 {
				analyze = r.With(RateLimitMiddleware(n))
			}
			analyze.Post("/analyze", handler.Analyze)

			r.Get("/languages", handler.Languages)

			r.Get("/settings", handler.ListSettings)
			r.Get("/settings/{key}", handler.GetSetting)
			r.Put("/settings/{key}", handler.PutSetting)

			r.Get("/audit", handler.GetAuditLogs)
		})
	})

	if cfg.Server.EnableUI {
		if ui == nil {
			log.Warn().Msg("UI enabled but no static files embedded")
		} else {
			r.Handle("/*", http.FileServer(http.FS(ui)))
		}
	}

	return r
}
