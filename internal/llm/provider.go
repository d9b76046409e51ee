package llm

import (
	"strings"

	"rag-chatbot/internal/models"
)

// Provider identifies a supported LLM backend
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderDeepSeek
	ProviderGemini
	ProviderChatGPT
)

// Providers lists every dispatchable provider in display order
var Providers = []Provider{ProviderDeepSeek, ProviderGemini, ProviderChatGPT}

func (p Provider) String() string {
	switch p {
	case ProviderDeepSeek:
		return "DeepSeek"
	case ProviderGemini:
		return "Gemini"
	case ProviderChatGPT:
		return "ChatGPT"
	default:
		return "Unknown"
	}
}

// ParseProvider maps a model name from a request to a Provider.
// Matching is case-insensitive; "openai" and "gpt" are accepted for ChatGPT.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "deepseek":
		return ProviderDeepSeek, nil
	case "gemini":
		return ProviderGemini, nil
	case "chatgpt", "openai", "gpt":
		return ProviderChatGPT, nil
	}
	return ProviderUnknown, models.NewError(models.KindUnknownProvider, "❌ Unknown model: "+name, nil)
}
