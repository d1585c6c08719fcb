package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/rotinaai-settings/internal/api/settings"
)

// Config contains dependencies needed for the router setup
type Config struct {
	SettingsHandler        *settings.SettingsHandler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) is expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", cfg.SettingsHandler.GetSettings)
				r.Patch("/", cfg.SettingsHandler.UpdateSettings)
				r.Put("/", cfg.SettingsHandler.ReplaceSettings)
				r.Delete("/", cfg.SettingsHandler.ResetSettings)
				r.Get("/export", cfg.SettingsHandler.ExportSettings)
			})
		})
	})

	return r
}
