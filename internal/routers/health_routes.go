package routers

import (
	"github.com/go-chi/chi/v5"

	"liquidhire/internal/handlers"
	"liquidhire/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/api/health", healthHandler.Health)
	router.Handle("/metrics", metrics.Handler())
}
