package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"liquidhire/internal/llm"
	"liquidhire/internal/metrics"
	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
	"liquidhire/internal/prompts"
	"liquidhire/internal/utils"
)

// EndInterviewHandler serves the end-of-session scoring endpoint.
type EndInterviewHandler struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewEndInterviewHandler(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger) *EndInterviewHandler {
	return &EndInterviewHandler{provider: provider, prompts: pm, logger: logger}
}

// scoreReport mirrors the JSON the scorer prompt demands from the model.
type scoreReport struct {
	OverallScore   int                       `json:"overall_score"`
	OverallSummary string                    `json:"overall_summary"`
	Questions      []models.QuestionFeedback `json:"questions"`
}

// EndInterview handles POST /api/end-interview. Scoring failures return
// 200 with a zero-score body; the caller still ends the session and the
// record is saved unscored rather than lost.
func (h *EndInterviewHandler) EndInterview(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EndInterviewRequest](r)

	prompt, err := h.prompts.BuildPrompt("scorer", "default", map[string]string{
		"Transcript": renderTranscript(req.History),
		"JobRole":    req.JobRole,
	})
	if err != nil {
		h.logger.Error("scorer prompt build failed", zap.Error(err))
		utils.JSON(w, http.StatusOK, unscoredResponse())
		return
	}

	start := time.Now()
	raw, err := h.provider.Chat(r.Context(), &llm.Request{
		Messages: []llm.Message{{Role: "user", Content: prompt}},
		JSONMode: true,
	})
	metrics.ObserveProviderCall(h.provider.GetProviderName(), start, err)
	if err != nil {
		h.logger.Warn("scoring generation failed",
			zap.String("provider", h.provider.GetProviderName()),
			zap.Error(err))
		metrics.ScoringFailed()
		utils.JSON(w, http.StatusOK, unscoredResponse())
		return
	}

	var report scoreReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		h.logger.Warn("scoring response was not valid JSON", zap.Error(err))
		metrics.ScoringFailed()
		utils.JSON(w, http.StatusOK, unscoredResponse())
		return
	}
	if report.Questions == nil {
		report.Questions = []models.QuestionFeedback{}
	}

	utils.JSON(w, http.StatusOK, models.EndInterviewResponse{
		Score:      report.OverallScore,
		Summary:    report.OverallSummary,
		JSONReport: report.Questions,
	})
}

func unscoredResponse() models.EndInterviewResponse {
	return models.EndInterviewResponse{
		Score:      0,
		Summary:    "Error generating score.",
		JSONReport: []models.QuestionFeedback{},
	}
}

// renderTranscript flattens the turn history into labelled lines for the
// scorer prompt.
func renderTranscript(history []models.Turn) string {
	var b strings.Builder
	for _, turn := range history {
		label := "Candidate"
		if turn.Role == models.RoleInterviewer {
			label = "Interviewer"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}
