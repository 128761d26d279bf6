package llm

import (
	"context"
)

// Message is one chat message sent to a provider.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Request is a single generation request. JSONMode asks the provider to
// return strictly valid JSON (used by the scorer).
type Request struct {
	System      string
	Messages    []Message
	JSONMode    bool
	Temperature float32
	MaxTokens   int
}

// defines the interface for LLM providers
type Provider interface {
	Chat(ctx context.Context, req *Request) (string, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
