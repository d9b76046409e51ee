package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

const DefaultHashDimension = 384

// HashEmbedder is a deterministic, offline embedder. It hashes word unigrams and
// bigrams into a signed bag-of-words vector with sublinear term frequency.
type HashEmbedder struct {
	dim       int
	stopWords map[string]bool
}

// NewHashEmbedder creates a hash embedder; dim <= 0 falls back to 384
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}

	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
		"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
		"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
		"what": true, "which": true, "who": true, "how": true, "about": true,
	}

	return &HashEmbedder{dim: dim, stopWords: stopWords}
}

func (e *HashEmbedder) Name() string   { return "hash" }
func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed vectorizes every text. Text without usable tokens maps to the zero vector.
func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tokens, err := e.tokens(text)
		if err != nil {
			return nil, err
		}
		vectors[i] = e.vectorize(tokens)
	}
	return vectors, nil
}

func (e *HashEmbedder) tokens(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	var tokens []string
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if e.skip(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens, nil
}

func (e *HashEmbedder) skip(word string) bool {
	if e.stopWords[word] {
		return true
	}
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (e *HashEmbedder) vectorize(tokens []string) []float32 {
	weights := make(map[string]float64, len(tokens)*2)
	for i, tok := range tokens {
		weights[tok]++
		if i > 0 {
			weights[tokens[i-1]+" "+tok] += 0.5
		}
	}

	vec := make([]float32, e.dim)
	for feature, tf := range weights {
		h := fnv.New64a()
		h.Write([]byte(feature))
		sum := h.Sum64()

		idx := int(sum % uint64(e.dim))
		w := float32(1 + math.Log(tf))
		if sum>>63 == 1 {
			w = -w
		}
		vec[idx] += w
	}

	return Normalize(vec)
}
