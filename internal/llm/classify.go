package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"

	"rag-chatbot/internal/models"
)

// ClassifyError turns a raw provider failure into a user-facing models.Error
func ClassifyError(provider Provider, err error) *models.Error {
	if err == nil {
		return nil
	}

	var classified *models.Error
	if errors.As(err, &classified) {
		return classified
	}

	name := provider.String()
	text := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewError(models.KindProvider,
			fmt.Sprintf("❌ %s API error: request timed out, please try again", name), err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return models.NewError(models.KindProvider,
			fmt.Sprintf("❌ %s API error: provider temporarily unavailable (breaker open)", name), err)
	case strings.Contains(text, "401"),
		strings.Contains(text, "invalid api key"),
		strings.Contains(text, "api key not valid"),
		strings.Contains(text, "authentication"):
		return models.NewError(models.KindAuth,
			fmt.Sprintf("❌ Invalid API key. Please check your %s API key.", name), err)
	case strings.Contains(text, "quota"), strings.Contains(text, "limit"):
		return models.NewError(models.KindQuotaExceeded,
			fmt.Sprintf("⚠️ %s API quota exceeded. Please check your account limits.", name), err)
	default:
		return models.NewError(models.KindProvider,
			fmt.Sprintf("❌ %s API error: %s", name, err.Error()), err)
	}
}

// EmptyResponseError is returned when a provider answers with blank text
func EmptyResponseError(provider Provider) *models.Error {
	return models.NewError(models.KindEmptyResponse,
		fmt.Sprintf("⚠️ %s returned an empty response.", provider), nil)
}
