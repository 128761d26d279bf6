package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"liquidhire/internal/llm"
	"liquidhire/internal/metrics"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
	"liquidhire/internal/prompts"
	"liquidhire/internal/utils"
)

// roastPersona is the system prompt for the roast endpoint.
const roastPersona = "You are 'Liquid', a ruthless, sarcastic, elite tech recruiter. " +
	"You review resumes with brutal honesty and sharp wit. You never soften feedback."

// TailorHandler serves the resume tailoring and roast endpoints. Both are
// structured-JSON generations over the shared provider.
type TailorHandler struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewTailorHandler(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger) *TailorHandler {
	return &TailorHandler{provider: provider, prompts: pm, logger: logger}
}

// Tailor handles POST /api/tailor: rewrite a resume toward one job.
func (h *TailorHandler) Tailor(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.TailorRequest](r)

	prompt, err := h.prompts.BuildPrompt("tailor", "default", map[string]string{
		"ResumeText":     req.ResumeText,
		"JobTitle":       req.JobTitle,
		"JobDescription": req.JobDescription,
	})
	if err != nil {
		h.logger.Error("tailor prompt build failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "prompt_error", Message: "could not build tailor prompt"})
		return
	}

	var resp models.TailorResponse
	if !h.generateJSON(w, r, prompt, "", &resp) {
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Roast handles POST /api/roast: brutally honest resume feedback.
func (h *TailorHandler) Roast(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RoastRequest](r)

	prompt, err := h.prompts.BuildPrompt("roast", "default", map[string]string{
		"ResumeText": req.ResumeText,
	})
	if err != nil {
		h.logger.Error("roast prompt build failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "prompt_error", Message: "could not build roast prompt"})
		return
	}

	var resp models.RoastResponse
	if !h.generateJSON(w, r, prompt, roastPersona, &resp) {
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// generateJSON runs one JSON-mode generation and decodes the result into
// out. It writes the error response itself and reports success.
func (h *TailorHandler) generateJSON(w http.ResponseWriter, r *http.Request, prompt, system string, out interface{}) bool {
	start := time.Now()
	raw, err := h.provider.Chat(r.Context(), &llm.Request{
		System:   system,
		Messages: []llm.Message{{Role: "user", Content: prompt}},
		JSONMode: true,
	})
	metrics.ObserveProviderCall(h.provider.GetProviderName(), start, err)
	if err != nil {
		h.logger.Warn("structured generation failed",
			zap.String("provider", h.provider.GetProviderName()),
			zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{Code: "generation_failed", Message: "the model could not produce a result"})
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		h.logger.Warn("structured generation returned invalid JSON", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{Code: "invalid_generation", Message: "the model returned malformed output"})
		return false
	}
	return true
}
