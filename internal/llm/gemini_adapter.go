package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rag-chatbot/internal/models"
)

// GeminiAdapter sends a single flattened prompt to a Gemini model
type GeminiAdapter struct {
	apiKey string
	model  string
	opts   []option.ClientOption
}

// NewGeminiAdapter creates an adapter for the given model, "gemini-pro" when empty
func NewGeminiAdapter(apiKey, model string, opts ...option.ClientOption) *GeminiAdapter {
	if model == "" {
		model = "gemini-pro"
	}
	return &GeminiAdapter{apiKey: apiKey, model: model, opts: opts}
}

func (a *GeminiAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(a.apiKey)}, a.opts...)...)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SetTemperature(float32(req.Params.Temperature))
	model.SetMaxOutputTokens(int32(req.Params.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(FlattenPrompt(req)))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp), nil
}

// FlattenPrompt renders the conversation as a single text prompt:
//
//	System: <system>
//
//	Human: ...
//	Assistant: ...
//	Human: <prompt>
//	Assistant:
func FlattenPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(req.System)
	b.WriteString("\n\n")
	for _, msg := range req.History {
		switch msg.Role {
		case models.RoleAssistant:
			b.WriteString("Assistant: ")
		case models.RoleSystem:
			b.WriteString("System: ")
		default:
			b.WriteString("Human: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(req.Prompt)
	b.WriteString("\nAssistant:")
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// first candidate only
		break
	}
	return b.String()
}
