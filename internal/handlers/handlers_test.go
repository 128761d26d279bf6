package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"liquidhire/internal/llm"
	"liquidhire/internal/prompts"
)

// mockProvider records the last request and returns a canned reply.
type mockProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	last  *llm.Request
}

func (m *mockProvider) Chat(_ context.Context, req *llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = req
	return m.reply, m.err
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func (m *mockProvider) lastRequest() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func newTestPrompts(t *testing.T) *prompts.PromptManager {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("prompt manager: %v", err)
	}
	return pm
}

func performJSON(handler http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
