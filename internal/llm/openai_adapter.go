package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"rag-chatbot/internal/models"
)

// OpenAIAdapter talks to any OpenAI-compatible chat completions endpoint.
// DeepSeek and ChatGPT both go through it with different base URLs and models.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
}

// NewOpenAIAdapter creates an adapter; an empty baseURL keeps the library default
func NewOpenAIAdapter(apiKey, baseURL, model string) *OpenAIAdapter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (a *OpenAIAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	temperature := float32(req.Params.Temperature)
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    toOpenAIMessages(req),
		Temperature: &temperature,
		MaxTokens:   req.Params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessages builds system, history, then the user prompt
func toOpenAIMessages(req GenerateRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, msg := range req.History {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	return messages
}
