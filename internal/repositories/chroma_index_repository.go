package repositories

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"rag-chatbot/internal/db"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/models"
)

// ChromaMarkerFileName links a store directory to its Chroma collection
const ChromaMarkerFileName = "chroma_index.json"

// ChromaClient is the subset of the Chroma HTTP client the index needs
type ChromaClient interface {
	CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*db.Collection, error)
	DeleteCollection(ctx context.Context, name string) error
	CountCollection(ctx context.Context, name string) (int, error)
	AddDocuments(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error
	Query(ctx context.Context, collectionName string, queryEmbeddings [][]float32, nResults int) (*db.QueryResponse, error)
}

type chromaMarker struct {
	Collection string `json:"collection"`
	Embedder   string `json:"embedder"`
	Dimension  int    `json:"dimension"`
	NextSeq    int64  `json:"next_seq"`
}

// ChromaIndexRepository stores vectors in ChromaDB, one collection per store directory
type ChromaIndexRepository struct {
	client   ChromaClient
	embedder embedding.Embedder
}

// NewChromaIndexRepository creates a Chroma-backed index repository
func NewChromaIndexRepository(client ChromaClient, embedder embedding.Embedder) *ChromaIndexRepository {
	return &ChromaIndexRepository{client: client, embedder: embedder}
}

func (r *ChromaIndexRepository) Backend() string { return "chroma" }

func (r *ChromaIndexRepository) Open(ctx context.Context, path string) (Index, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, NewIndexRepositoryError("open", path, err, "")
	}

	idx := &chromaIndex{
		path:     path,
		file:     filepath.Join(path, ChromaMarkerFileName),
		client:   r.client,
		embedder: r.embedder,
	}

	marker, err := readChromaMarker(idx.file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		idx.marker = chromaMarker{
			Collection: CollectionNameForPath(path),
			Embedder:   r.embedder.Name(),
			Dimension:  r.embedder.Dimension(),
		}
	case err != nil:
		return nil, NewIndexRepositoryError("open", path, err, "")
	default:
		idx.marker = *marker
	}

	// get_or_create keeps this idempotent
	if _, err := r.client.CreateCollection(ctx, idx.marker.Collection, map[string]interface{}{
		"store_path": path,
		"embedder":   idx.marker.Embedder,
	}); err != nil {
		return nil, NewIndexRepositoryError("open", path, err, "")
	}

	if err := idx.persist(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Drop deletes the store's collection
func (r *ChromaIndexRepository) Drop(ctx context.Context, path string) error {
	marker, err := readChromaMarker(filepath.Join(path, ChromaMarkerFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewIndexRepositoryError("drop", path, err, "")
	}

	if err := r.client.DeleteCollection(ctx, marker.Collection); err != nil && !errors.Is(err, db.ErrCollectionNotFound) {
		return NewIndexRepositoryError("drop", path, err, "")
	}
	return nil
}

var invalidCollectionChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// CollectionNameForPath derives a valid, collision-resistant Chroma collection name from a store path
func CollectionNameForPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha1.Sum([]byte(abs))

	base := invalidCollectionChars.ReplaceAllString(filepath.Base(abs), "_")
	base = strings.Trim(base, "_-")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" {
		base = "store"
	}
	return fmt.Sprintf("rag_%s_%s", base, hex.EncodeToString(sum[:])[:8])
}

func readChromaMarker(file string) (*chromaMarker, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var marker chromaMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("corrupt chroma marker: %w", err)
	}
	return &marker, nil
}

type chromaIndex struct {
	mu       sync.Mutex
	path     string
	file     string
	client   ChromaClient
	embedder embedding.Embedder
	marker   chromaMarker
}

func (i *chromaIndex) Dimension() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.marker.Dimension
}

func (i *chromaIndex) EmbedderName() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.marker.Embedder
}

func (i *chromaIndex) Count(ctx context.Context) (int, error) {
	count, err := i.client.CountCollection(ctx, i.marker.Collection)
	if err != nil {
		return 0, NewIndexRepositoryError("count", i.path, err, "")
	}
	return count, nil
}

func (i *chromaIndex) compatible(operation string) error {
	name, dim := i.embedder.Name(), i.embedder.Dimension()
	if i.marker.Embedder == name && i.marker.Dimension == dim {
		return nil
	}
	return indexMismatchError(operation, i.path, i.marker.Embedder, i.marker.Dimension, name, dim)
}

func (i *chromaIndex) Add(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.compatible("add"); err != nil {
		return 0, err
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))
	for n, ch := range chunks {
		ids[n] = ch.ID
		texts[n] = ch.Text
		metadatas[n] = map[string]interface{}{
			"source": ch.Source,
			"page":   ch.Page,
			"seq":    i.marker.NextSeq + int64(n),
		}
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, NewIndexRepositoryError("add", i.path, err, "")
	}

	if err := i.client.AddDocuments(ctx, i.marker.Collection, ids, texts, vectors, metadatas); err != nil {
		return 0, NewIndexRepositoryError("add", i.path, err, "")
	}

	i.marker.NextSeq += int64(len(chunks))
	if err := i.persist(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (i *chromaIndex) Search(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	if k <= 0 {
		return []models.SearchHit{}, nil
	}

	i.mu.Lock()
	empty := i.marker.NextSeq == 0
	err := i.compatible("search")
	i.mu.Unlock()

	if empty {
		return []models.SearchHit{}, nil
	}
	if err != nil {
		return nil, err
	}

	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, NewIndexRepositoryError("search", i.path, err, "")
	}

	resp, err := i.client.Query(ctx, i.marker.Collection, vectors, k)
	if err != nil {
		return nil, NewIndexRepositoryError("search", i.path, err, "")
	}
	if len(resp.IDs) == 0 {
		return []models.SearchHit{}, nil
	}

	hits := make([]models.SearchHit, 0, len(resp.IDs[0]))
	for n, id := range resp.IDs[0] {
		hit := models.SearchHit{ChunkID: id}
		if len(resp.Documents) > 0 && n < len(resp.Documents[0]) {
			hit.Text = resp.Documents[0][n]
		}
		if len(resp.Distances) > 0 && n < len(resp.Distances[0]) {
			hit.Score = 1 - resp.Distances[0][n]
		}
		if len(resp.Metadatas) > 0 && n < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][n]
			hit.Source, _ = meta["source"].(string)
			hit.Page = int(number(meta["page"]))
			hit.Seq = int64(number(meta["seq"]))
		}
		hits = append(hits, hit)
	}

	return rankHits(hits, k), nil
}

func (i *chromaIndex) persist() error {
	data, err := json.Marshal(i.marker)
	if err != nil {
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	tmp := i.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	if err := os.Rename(tmp, i.file); err != nil {
		return NewIndexRepositoryError("persist", i.path, err, "")
	}
	return nil
}

// number converts JSON-decoded metadata values to float64
func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
