package handlers

import (
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

// openingAnswer replaces the start sentinel on the very first turn so the
// model sees a natural user message instead of a magic string.
const openingAnswer = "I am ready for the interview. Please start."

// fallbackQuestion keeps the session alive when the provider fails.
const fallbackQuestion = "I'm unable to respond right now."

// ChatHandler serves the interviewer turn endpoint.
type ChatHandler struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	logger   *zap.Logger
}

func NewChatHandler(provider llm.Provider, pm prompts.PromptProvider, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{provider: provider, prompts: pm, logger: logger}
}

// Chat handles POST /api/chat. The response is always 200 with a
// next_question; provider failures degrade to a fallback line so the
// client's turn loop never stalls on an error payload.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)

	system, err := h.prompts.BuildPrompt("interviewer", "default", map[string]string{
		"JobRole":    req.JobRole,
		"ResumeText": req.ResumeText,
	})
	if err != nil {
		h.logger.Error("interviewer prompt build failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "prompt_error",
			Message: "could not build interviewer prompt",
		})
		return
	}

	messages := historyToMessages(req.History)
	switch {
	case req.CurrentAnswer != models.StartSentinel:
		messages = append(messages, llm.Message{Role: "user", Content: req.CurrentAnswer})
	case len(req.History) == 0:
		messages = append(messages, llm.Message{Role: "user", Content: openingAnswer})
	default:
		// a stray sentinel mid-session adds no user turn; the model just
		// continues from the history
	}

	start := time.Now()
	question, err := h.provider.Chat(r.Context(), &llm.Request{
		System:   system,
		Messages: messages,
	})
	metrics.ObserveProviderCall(h.provider.GetProviderName(), start, err)
	if err != nil {
		h.logger.Warn("chat generation failed",
			zap.String("provider", h.provider.GetProviderName()),
			zap.Error(err))
		utils.JSON(w, http.StatusOK, models.ChatResponse{NextQuestion: fallbackQuestion})
		return
	}

	utils.JSON(w, http.StatusOK, models.ChatResponse{NextQuestion: question})
}

// historyToMessages maps transcript roles onto provider chat roles.
func historyToMessages(history []models.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == models.RoleInterviewer {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return messages
}
