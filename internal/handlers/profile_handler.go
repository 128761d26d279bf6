package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
	"liquidhire/internal/repositories"
	"liquidhire/internal/utils"
)

// ProfileHandler serves the caller's profile and skill tags.
type ProfileHandler struct {
	repo   *repositories.ProfileRepository
	logger *zap.Logger
}

func NewProfileHandler(repo *repositories.ProfileRepository, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{repo: repo, logger: logger}
}

// Get handles GET /api/profile. A user with no profile yet gets an empty
// one rather than a 404, so the client can render a blank form.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}

	profile, err := h.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			utils.JSON(w, http.StatusOK, models.Profile{UserID: userID})
			return
		}
		h.logger.Error("profile fetch failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "fetch_error", Message: "failed to fetch profile"})
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profile as an upsert.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}
	req := middleware.GetValidatedRequest[*models.UpdateProfileRequest](r)

	profile, err := h.repo.Upsert(userID, &models.Profile{
		FullName:   req.FullName,
		Headline:   req.Headline,
		TargetRole: req.TargetRole,
		ResumeText: req.ResumeText,
	})
	if err != nil {
		h.logger.Error("profile upsert failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "save_error", Message: "failed to save profile"})
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// ListSkills handles GET /api/profile/skills.
func (h *ProfileHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}

	skills, err := h.repo.ListSkills(userID)
	if err != nil {
		h.logger.Error("skill list failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "list_error", Message: "failed to list skills"})
		return
	}

	utils.JSON(w, http.StatusOK, skills)
}

// AddSkill handles POST /api/profile/skills.
func (h *ProfileHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}
	req := middleware.GetValidatedRequest[*models.AddSkillRequest](r)

	skill, err := h.repo.AddSkill(userID, req.Name)
	if err != nil {
		h.logger.Error("skill add failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "save_error", Message: "failed to add skill"})
		return
	}

	utils.JSON(w, http.StatusCreated, skill)
}

// RemoveSkill handles DELETE /api/profile/skills/{id}.
func (h *ProfileHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "id must be numeric"})
		return
	}

	if err := h.repo.RemoveSkill(userID, uint(id)); err != nil {
		h.logger.Error("skill remove failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "delete_error", Message: "failed to remove skill"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
