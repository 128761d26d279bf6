package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"liquidhire/internal/models"
)

// APIClient talks to the public chat and scoring endpoints. The live
// session layer consumes the same HTTP surface external callers use
// instead of reaching into the handlers.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ ChatClient = (*APIClient)(nil)
var _ ScoringClient = (*APIClient)(nil)

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// NextQuestion posts the turn to /api/chat. No retries: the engine's
// error path keeps the session usable, so a failed turn is just retried
// by the candidate.
func (c *APIClient) NextQuestion(ctx context.Context, resumeText, jobRole string, history []models.Turn, currentAnswer string) (string, error) {
	req := models.ChatRequest{
		ResumeText:    resumeText,
		JobRole:       jobRole,
		History:       history,
		CurrentAnswer: currentAnswer,
	}
	var resp models.ChatResponse
	if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.NextQuestion, nil
}

// Score posts the finished transcript to /api/end-interview.
func (c *APIClient) Score(ctx context.Context, history []models.Turn, jobRole, resumeText string) (*models.EndInterviewResponse, error) {
	req := models.EndInterviewRequest{
		History:    history,
		JobRole:    jobRole,
		ResumeText: resumeText,
	}
	var resp models.EndInterviewResponse
	if err := c.post(ctx, "/api/end-interview", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, httpResp.StatusCode, string(snippet))
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
