package routers

import (
	"github.com/go-chi/chi/v5"

	"liquidhire/internal/handlers"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
)

func ProfileRoutes(router *chi.Mux, profileHandler *handlers.ProfileHandler, jwtSecret string) {
	router.Route("/api/profile", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSecret))
		r.Get("/", profileHandler.Get)
		r.With(middleware.ValidateRequest[*models.UpdateProfileRequest]()).Put("/", profileHandler.Update)
		r.Get("/skills", profileHandler.ListSkills)
		r.With(middleware.ValidateRequest[*models.AddSkillRequest]()).Post("/skills", profileHandler.AddSkill)
		r.Delete("/skills/{id}", profileHandler.RemoveSkill)
	})
}
