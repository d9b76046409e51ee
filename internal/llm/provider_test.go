package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot/internal/models"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name string
		want Provider
	}{
		{"DeepSeek", ProviderDeepSeek},
		{"deepseek", ProviderDeepSeek},
		{"Gemini", ProviderGemini},
		{" GEMINI ", ProviderGemini},
		{"ChatGPT", ProviderChatGPT},
		{"openai", ProviderChatGPT},
		{"gpt", ProviderChatGPT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProvider(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProvider_Unknown(t *testing.T) {
	p, err := ParseProvider("Claude")
	require.Error(t, err)
	assert.Equal(t, ProviderUnknown, p)
	assert.ErrorIs(t, err, models.ErrUnknownProvider)
	assert.Equal(t, "❌ Unknown model: Claude", err.Error())
}

func TestProviderString(t *testing.T) {
	assert.Equal(t, "DeepSeek", ProviderDeepSeek.String())
	assert.Equal(t, "Gemini", ProviderGemini.String())
	assert.Equal(t, "ChatGPT", ProviderChatGPT.String())
	assert.Equal(t, "Unknown", ProviderUnknown.String())
}
