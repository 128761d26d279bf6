package groq

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"liquidhire/internal/llm"
)

// Client represents a Groq LLM client.
type Client struct {
	client *openai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

func (c *Client) Chat(ctx context.Context, req *llm.Request) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.6
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	completionReq := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        1,
	}
	if req.JSONMode {
		completionReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, completionReq)
	if err != nil {
		code := llm.ErrCodeServiceDown
		if strings.Contains(err.Error(), "401") {
			code = llm.ErrCodeAPIKey
		} else if strings.Contains(err.Error(), "429") {
			code = llm.ErrCodeRateLimit
		}
		return "", &llm.ProviderError{
			Provider: "groq",
			Code:     code,
			Message:  "Failed to create chat completion",
			Err:      err,
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &llm.ProviderError{
			Provider: "groq",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) GetProviderName() string {
	return "groq"
}
