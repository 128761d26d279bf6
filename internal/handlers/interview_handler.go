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

// InterviewHandler serves the per-user interview history.
type InterviewHandler struct {
	repo   *repositories.InterviewRepository
	logger *zap.Logger
}

func NewInterviewHandler(repo *repositories.InterviewRepository, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{repo: repo, logger: logger}
}

// Save handles POST /api/interviews. Records are insert-only; a finished
// session is written once and never edited.
func (h *InterviewHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}
	req := middleware.GetValidatedRequest[*models.SaveInterviewRequest](r)

	rec := &models.Interview{
		UserID:  userID,
		JobRole: req.JobRole,
		Score:   req.Score,
		Summary: req.Summary,
	}
	if err := rec.SetTranscript(req.Transcript); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_transcript", Message: "transcript could not be encoded"})
		return
	}
	if err := rec.SetReport(req.JSONReport); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_report", Message: "json_report could not be encoded"})
		return
	}

	if err := h.repo.Create(rec); err != nil {
		h.logger.Error("interview save failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "save_error", Message: "failed to save interview"})
		return
	}

	utils.JSON(w, http.StatusCreated, rec)
}

// List handles GET /api/interviews, newest first.
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.AuthUserID(r)
	if !ok {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{Code: "unauthorized", Message: "missing auth context"})
		return
	}

	records, err := h.repo.ListByUser(userID)
	if err != nil {
		h.logger.Error("interview list failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "list_error", Message: "failed to list interviews"})
		return
	}

	utils.JSON(w, http.StatusOK, records)
}

// Get handles GET /api/interviews/{id}. Callers only ever see their own
// records; someone else's ID reads as not found.
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	rec, err := h.repo.GetByID(userID, uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrInterviewNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "interview not found"})
			return
		}
		h.logger.Error("interview fetch failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "fetch_error", Message: "failed to fetch interview"})
		return
	}

	utils.JSON(w, http.StatusOK, rec)
}
