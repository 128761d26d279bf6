package routers

import (
	"github.com/go-chi/chi/v5"

	"liquidhire/internal/handlers"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
)

// InterviewRoutes wires the session turn loop's HTTP surface plus the
// per-user interview history.
func InterviewRoutes(router *chi.Mux, chat *handlers.ChatHandler, end *handlers.EndInterviewHandler, history *handlers.InterviewHandler, jwtSecret string) {
	router.With(middleware.ValidateRequest[*models.ChatRequest]()).Post("/api/chat", chat.Chat)
	router.With(middleware.ValidateRequest[*models.EndInterviewRequest]()).Post("/api/end-interview", end.EndInterview)

	router.Route("/api/interviews", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSecret))
		r.With(middleware.ValidateRequest[*models.SaveInterviewRequest]()).Post("/", history.Save)
		r.Get("/", history.List)
		r.Get("/{id}", history.Get)
	})
}
