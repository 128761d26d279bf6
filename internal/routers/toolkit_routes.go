package routers

import (
	"github.com/go-chi/chi/v5"

	"liquidhire/internal/handlers"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
)

// ToolkitRoutes wires the resume toolkit: parsing, tailoring, roasting
// and the jobs catalog.
func ToolkitRoutes(router *chi.Mux, resume *handlers.ResumeHandler, tailor *handlers.TailorHandler, jobs *handlers.JobHandler) {
	router.Post("/api/parse-resume", resume.Parse)
	router.With(middleware.ValidateRequest[*models.TailorRequest]()).Post("/api/tailor", tailor.Tailor)
	router.With(middleware.ValidateRequest[*models.RoastRequest]()).Post("/api/roast", tailor.Roast)
	router.With(middleware.ValidateRequest[*models.JobSearchRequest]()).Post("/api/jobs", jobs.Search)
}
