package routes

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"skyatlas/airports/internal/api"
	"skyatlas/airports/internal/middleware"
)

// RegisterAPIRoutes registers the catalog and admin routes.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	cfg := deps.Config

	r.Route("/airports", func(airports chi.Router) {
		airports.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		airports.Use(middleware.APIKeyMiddleware(cfg.Auth.ValidAPIKeys))

		airports.Get("/search", handlers.SearchAirports())
		airports.Get("/search/main", handlers.SearchMainAirports())
		airports.Get("/main-airport/{city}", handlers.MainAirportForCity())
		airports.Get("/stats", handlers.AirportStats())
		airports.Get("/id/{id}", handlers.AirportByID())
		airports.Get("/iata/{iata}", handlers.AirportByIATA())
		airports.Get("/icao/{icao}", handlers.AirportByICAO())
		airports.Get("/country/{country}", handlers.AirportsByCountry())
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(chimw.Timeout(cfg.Server.ImportTimeout))
		admin.Use(middleware.AdminMiddleware(cfg.Auth, deps.Services.AdminTokens))

		admin.Post("/import-data", handlers.ImportData())
		admin.Delete("/cache", handlers.ClearCache())
	})
}
