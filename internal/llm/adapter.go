package llm

import (
	"context"
	"fmt"

	"rag-chatbot/config"
	"rag-chatbot/internal/models"
)

// Params are the sampling parameters forwarded to the provider
type Params struct {
	Temperature float64
	MaxTokens   int
}

// GenerateRequest is a provider-neutral chat completion request
type GenerateRequest struct {
	System  string
	History []models.ChatMessage
	Prompt  string
	Params  Params
}

// Adapter sends one completion request to a provider and returns the raw reply text
type Adapter interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Factory builds an adapter for a provider using the caller's API key
type Factory interface {
	New(provider Provider, apiKey string) (Adapter, error)
}

// ClientFactory builds the real HTTP adapters from configuration
type ClientFactory struct {
	cfg config.LLMConfig
}

// NewClientFactory creates a factory for the configured provider endpoints
func NewClientFactory(cfg config.LLMConfig) *ClientFactory {
	return &ClientFactory{cfg: cfg}
}

func (f *ClientFactory) New(provider Provider, apiKey string) (Adapter, error) {
	switch provider {
	case ProviderDeepSeek:
		return NewOpenAIAdapter(apiKey, f.cfg.DeepSeekBaseURL, f.cfg.DeepSeekModel), nil
	case ProviderChatGPT:
		return NewOpenAIAdapter(apiKey, f.cfg.OpenAIBaseURL, f.cfg.OpenAIModel), nil
	case ProviderGemini:
		return NewGeminiAdapter(apiKey, f.cfg.GeminiModel), nil
	}
	return nil, models.NewError(models.KindUnknownProvider, fmt.Sprintf("❌ Unknown model: %s", provider), nil)
}
