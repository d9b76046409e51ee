package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"rag-chatbot/config"
)

// Embedder turns texts into fixed-width vectors. Implementations must be safe for concurrent use.
type Embedder interface {
	// Name identifies the model; an index only accepts vectors from the embedder it was built with
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// New selects an embedder by model name: "hash" (or "local") for the offline
// feature-hashing embedder, "gemini:<model>" for Google embeddings.
func New(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	model := strings.TrimSpace(cfg.Model)

	switch {
	case model == "" || model == "hash" || model == "local":
		return NewHashEmbedder(cfg.Dimension), nil
	case strings.HasPrefix(model, "gemini:"):
		return NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, strings.TrimPrefix(model, "gemini:"))
	default:
		return nil, fmt.Errorf("unknown embedding model %q", cfg.Model)
	}
}

// Normalize scales v to unit length in place. Zero vectors are left unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Cosine returns the cosine similarity of a and b, or 0 if either is a zero vector
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
