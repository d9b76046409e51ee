package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiBatchLimit = 100

var geminiDimensions = map[string]int{
	"text-embedding-004": 768,
	"embedding-001":      768,
	"text-embedding-005": 768,
}

// GeminiEmbedder embeds texts with a Google embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int
}

// NewGeminiEmbedder creates a Gemini embedder. Models with an unknown width are probed once.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embeddings require GEMINI_API_KEY")
	}
	if model == "" {
		model = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	e := &GeminiEmbedder{client: client, model: model, dim: geminiDimensions[model]}
	if e.dim == 0 {
		probe, err := e.Embed(ctx, []string{"dimension probe"})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to probe embedding dimension: %w", err)
		}
		e.dim = len(probe[0])
	}

	return e, nil
}

func (e *GeminiEmbedder) Name() string   { return "gemini:" + e.model }
func (e *GeminiEmbedder) Dimension() int { return e.dim }

// Embed sends texts in batches of at most 100
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += geminiBatchLimit {
		end := start + geminiBatchLimit
		if end > len(texts) {
			end = len(texts)
		}

		batch := em.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini embedding failed: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}

		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

// Close releases the underlying client
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
