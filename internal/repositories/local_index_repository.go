package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/models"
)

// LocalIndexFileName holds the vectors of a locally indexed store
const LocalIndexFileName = "index.json"

type localIndexFile struct {
	Embedder  string       `json:"embedder"`
	Dimension int          `json:"dimension"`
	NextSeq   int64        `json:"next_seq"`
	Entries   []indexEntry `json:"entries"`
}

type indexEntry struct {
	ID     string    `json:"id"`
	Seq    int64     `json:"seq"`
	Source string    `json:"source"`
	Page   int       `json:"page,omitempty"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// LocalIndexRepository keeps each store's vectors in a JSON file inside the store directory
// and searches them with exact cosine similarity.
type LocalIndexRepository struct {
	embedder embedding.Embedder
}

// NewLocalIndexRepository creates a file-backed index repository
func NewLocalIndexRepository(embedder embedding.Embedder) *LocalIndexRepository {
	return &LocalIndexRepository{embedder: embedder}
}

func (r *LocalIndexRepository) Backend() string { return "local" }

// Open loads the index at path, creating the directory and an empty index file if needed
func (r *LocalIndexRepository) Open(ctx context.Context, path string) (Index, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, NewIndexRepositoryError("open", path, err, "")
	}

	idx := &localIndex{
		path:     path,
		file:     filepath.Join(path, LocalIndexFileName),
		embedder: r.embedder,
	}

	data, err := os.ReadFile(idx.file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		idx.state = localIndexFile{
			Embedder:  r.embedder.Name(),
			Dimension: r.embedder.Dimension(),
			Entries:   []indexEntry{},
		}
		if err := idx.persist(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, NewIndexRepositoryError("open", path, err, "")
	default:
		if err := json.Unmarshal(data, &idx.state); err != nil {
			return nil, NewIndexRepositoryError("open", path, fmt.Errorf("corrupt index file: %w", err), "")
		}
	}

	return idx, nil
}

// Drop is a no-op: the vectors disappear with the store directory
func (r *LocalIndexRepository) Drop(ctx context.Context, path string) error {
	return nil
}

type localIndex struct {
	mu       sync.RWMutex
	path     string
	file     string
	embedder embedding.Embedder
	state    localIndexFile
}

func (i *localIndex) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state.Dimension
}

func (i *localIndex) EmbedderName() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state.Embedder
}

func (i *localIndex) Count(ctx context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.state.Entries), nil
}

// compatible must be called with the lock held. An empty index adopts the current embedder.
func (i *localIndex) compatible(operation string) error {
	name, dim := i.embedder.Name(), i.embedder.Dimension()
	if i.state.Embedder == name && i.state.Dimension == dim {
		return nil
	}
	if len(i.state.Entries) == 0 && operation == "add" {
		i.state.Embedder, i.state.Dimension = name, dim
		return nil
	}
	return indexMismatchError(operation, i.path, i.state.Embedder, i.state.Dimension, name, dim)
}

func (i *localIndex) Add(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for n, ch := range chunks {
		texts[n] = ch.Text
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, NewIndexRepositoryError("add", i.path, err, "")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.compatible("add"); err != nil {
		return 0, err
	}

	previous := i.state
	entries := make([]indexEntry, len(previous.Entries), len(previous.Entries)+len(chunks))
	copy(entries, previous.Entries)

	seq := previous.NextSeq
	for n, ch := range chunks {
		if len(vectors[n]) != i.state.Dimension {
			return 0, indexMismatchError("add", i.path, i.state.Embedder, i.state.Dimension, i.embedder.Name(), len(vectors[n]))
		}
		entries = append(entries, indexEntry{
			ID:     ch.ID,
			Seq:    seq,
			Source: ch.Source,
			Page:   ch.Page,
			Text:   ch.Text,
			Vector: vectors[n],
		})
		seq++
	}

	i.state.Entries = entries
	i.state.NextSeq = seq
	if err := i.persist(); err != nil {
		i.state = previous
		return 0, err
	}

	return len(chunks), nil
}

func (i *localIndex) Search(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	if k <= 0 {
		return []models.SearchHit{}, nil
	}

	i.mu.RLock()
	if len(i.state.Entries) == 0 {
		i.mu.RUnlock()
		return []models.SearchHit{}, nil
	}
	if err := i.compatible("search"); err != nil {
		i.mu.RUnlock()
		return nil, err
	}
	i.mu.RUnlock()

	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, NewIndexRepositoryError("search", i.path, err, "")
	}
	q := vectors[0]

	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(q) != i.state.Dimension {
		return nil, indexMismatchError("search", i.path, i.state.Embedder, i.state.Dimension, i.embedder.Name(), len(q))
	}

	hits := make([]models.SearchHit, len(i.state.Entries))
	for n, e := range i.state.Entries {
		hits[n] = models.SearchHit{
			ChunkID: e.ID,
			Source:  e.Source,
			Page:    e.Page,
			Text:    e.Text,
			Score:   embedding.Cosine(q, e.Vector),
			Seq:     e.Seq,
		}
	}

	return rankHits(hits, k), nil
}

// persist writes the index atomically: temp file in the same directory, then rename
func (i *localIndex) persist() error {
	data, err := json.Marshal(i.state)
	if err != nil {
		return NewIndexRepositoryError("persist", i.path, err, "")
	}

	tmp, err := os.CreateTemp(i.path, LocalIndexFileName+".*.tmp")
	if err != nil {
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	if err := os.Rename(tmpName, i.file); err != nil {
		os.Remove(tmpName)
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	return nil
}
