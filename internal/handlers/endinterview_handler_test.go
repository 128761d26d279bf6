package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
)

func newEndEndpoint(t *testing.T, provider *mockProvider) http.Handler {
	t.Helper()
	h := NewEndInterviewHandler(provider, newTestPrompts(t), zap.NewNop())
	return middleware.ValidateRequest[*models.EndInterviewRequest]()(http.HandlerFunc(h.EndInterview))
}

const endBody = `{
	"job_role": "Backend Engineer",
	"history": [
		{"role": "model", "content": "What is a goroutine?"},
		{"role": "user", "content": "A lightweight thread managed by the runtime."}
	]
}`

func TestEndInterviewParsesScoreReport(t *testing.T) {
	provider := &mockProvider{reply: `{
		"overall_score": 78,
		"overall_summary": "Solid fundamentals.",
		"questions": [
			{"question": "What is a goroutine?", "user_answer": "Runtime thread", "score": 8, "feedback": "Good", "ideal_answer": "..."}
		]
	}`}
	endpoint := newEndEndpoint(t, provider)

	rec := performJSON(endpoint, "/api/end-interview", endBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.EndInterviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Score != 78 || resp.Summary != "Solid fundamentals." {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.JSONReport) != 1 || resp.JSONReport[0].Score != 8 {
		t.Errorf("json_report = %+v", resp.JSONReport)
	}

	// scorer runs in JSON mode over a labelled transcript
	req := provider.lastRequest()
	if !req.JSONMode {
		t.Error("scorer request must use JSON mode")
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "Interviewer: What is a goroutine?") {
		t.Errorf("prompt missing interviewer line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Candidate: A lightweight thread managed by the runtime.") {
		t.Errorf("prompt missing candidate line:\n%s", prompt)
	}
}

func TestEndInterviewProviderFailureReturnsUnscored(t *testing.T) {
	provider := &mockProvider{err: errors.New("down")}
	endpoint := newEndEndpoint(t, provider)

	rec := performJSON(endpoint, "/api/end-interview", endBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp models.EndInterviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Score != 0 || resp.Summary != "Error generating score." {
		t.Errorf("resp = %+v", resp)
	}
	if resp.JSONReport == nil || len(resp.JSONReport) != 0 {
		t.Errorf("json_report = %v, want empty array", resp.JSONReport)
	}
}

func TestEndInterviewMalformedModelOutputReturnsUnscored(t *testing.T) {
	provider := &mockProvider{reply: "The candidate did well overall!"}
	endpoint := newEndEndpoint(t, provider)

	rec := performJSON(endpoint, "/api/end-interview", endBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.EndInterviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Score != 0 || resp.Summary != "Error generating score." {
		t.Errorf("resp = %+v", resp)
	}
}

func TestEndInterviewRejectsEmptyHistory(t *testing.T) {
	endpoint := newEndEndpoint(t, &mockProvider{reply: "{}"})

	rec := performJSON(endpoint, "/api/end-interview", `{"job_role": "SRE", "history": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
