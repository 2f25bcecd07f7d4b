package router

import (
	"net/http"

	"bgg-mirror-api/internal/handler"
	"bgg-mirror-api/internal/middleware"
	"bgg-mirror-api/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CatalogHandler *handler.CatalogHandler
	SyncHandler    *handler.SyncHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Unified status endpoint for uptime monitoring
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.SyncHandler != nil {
			r.Get("/stats", cfg.SyncHandler.Stats)
		}

		if cfg.CatalogHandler != nil && cfg.SyncHandler != nil {
			resource := func(r chi.Router, kind model.Kind, list http.HandlerFunc) {
				r.Get("/", list)
				r.Get("/stats", cfg.SyncHandler.KindStats(kind))
				r.Get("/sync", cfg.SyncHandler.LastReport(kind))
				r.Post("/update", cfg.SyncHandler.Trigger(kind))
			}

			r.Route("/bgg_games", func(r chi.Router) {
				resource(r, model.KindGame, cfg.CatalogHandler.ListGames)
			})
			r.Route("/bgg_accessories", func(r chi.Router) {
				resource(r, model.KindAccessory, cfg.CatalogHandler.ListAccessories)
			})
			r.Route("/bgg_hotness", func(r chi.Router) {
				r.Route("/games", func(r chi.Router) {
					resource(r, model.KindHotGame, cfg.CatalogHandler.ListHotGames)
				})
				r.Route("/persons", func(r chi.Router) {
					resource(r, model.KindHotPerson, cfg.CatalogHandler.ListHotPersons)
				})
			})
			r.Route("/bgg_plays", func(r chi.Router) {
				resource(r, model.KindPlay, cfg.CatalogHandler.ListPlays)
			})
		}
	})

	return r
}
