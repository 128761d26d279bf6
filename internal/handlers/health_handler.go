package handlers

import (
	"net/http"

	"liquidhire/internal/utils"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	Provider string
}

func NewHealthHandler(provider string) *HealthHandler {
	return &HealthHandler{Provider: provider}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.Provider,
	})
}
