package repositories

import (
	"context"
	"fmt"
	"sort"

	"rag-chatbot/internal/models"
)

// IndexRepository opens the persistent vector index that lives in a store directory.
// Implementations decide where vectors are kept; the directory is always the store identity.
type IndexRepository interface {
	// Open is idempotent: it creates the directory and an empty index when missing, otherwise loads it
	Open(ctx context.Context, path string) (Index, error)
	// Drop releases backend resources for a store that is being deleted
	Drop(ctx context.Context, path string) error
	Backend() string
}

// Index is an opened store index
type Index interface {
	// Add embeds and appends chunks; each call is durable before it returns
	Add(ctx context.Context, chunks []models.Chunk) (int, error)
	// Search returns the k nearest chunks, best first, ties broken by insertion order
	Search(ctx context.Context, query string, k int) ([]models.SearchHit, error)
	Count(ctx context.Context) (int, error)
	Dimension() int
	EmbedderName() string
}

// IndexRepositoryError represents errors from an index repository
type IndexRepositoryError struct {
	Operation string
	Path      string
	Err       error
	Message   string
}

func (e *IndexRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + " " + e.Path + ": " + e.Err.Error()
	}
	return e.Operation + " " + e.Path + ": unknown error"
}

func (e *IndexRepositoryError) Unwrap() error {
	return e.Err
}

// NewIndexRepositoryError creates a new index repository error
func NewIndexRepositoryError(operation, path string, err error, message string) *IndexRepositoryError {
	return &IndexRepositoryError{
		Operation: operation,
		Path:      path,
		Err:       err,
		Message:   message,
	}
}

// indexMismatchError reports vectors from a different embedder than the index was built with
func indexMismatchError(operation, path, wantName string, wantDim int, gotName string, gotDim int) error {
	msg := fmt.Sprintf("index at %s was built with %s (dimension %d), cannot use %s (dimension %d)",
		path, wantName, wantDim, gotName, gotDim)
	return NewIndexRepositoryError(operation, path, models.NewIndexMismatchError(msg), msg)
}

// rankHits orders hits by score, best first, with ties in insertion order, and keeps the top k
func rankHits(hits []models.SearchHit, k int) []models.SearchHit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Seq < hits[j].Seq
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
