package repositories

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rag-chatbot/internal/db"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/models"
)

type mockChromaClient struct {
	mock.Mock
}

func (m *mockChromaClient) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*db.Collection, error) {
	args := m.Called(ctx, name, metadata)
	if c := args.Get(0); c != nil {
		return c.(*db.Collection), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChromaClient) DeleteCollection(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockChromaClient) CountCollection(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *mockChromaClient) AddDocuments(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	return m.Called(ctx, collectionName, ids, documents, embeddings, metadatas).Error(0)
}

func (m *mockChromaClient) Query(ctx context.Context, collectionName string, queryEmbeddings [][]float32, nResults int) (*db.QueryResponse, error) {
	args := m.Called(ctx, collectionName, queryEmbeddings, nResults)
	if r := args.Get(0); r != nil {
		return r.(*db.QueryResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCollectionNameForPath(t *testing.T) {
	a := CollectionNameForPath("/data/chroma_dbs/My Store!")
	b := CollectionNameForPath("/other/chroma_dbs/My Store!")

	assert.True(t, strings.HasPrefix(a, "rag_My_Store_"), a)
	assert.NotEqual(t, a, b, "same base name in different parents must not collide")
	assert.Equal(t, a, CollectionNameForPath("/data/chroma_dbs/My Store!"))
	assert.LessOrEqual(t, len(CollectionNameForPath("/x/"+strings.Repeat("a", 200))), 63)
}

func TestChromaIndexRepository_AddAndSearch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	client := new(mockChromaClient)
	repo := NewChromaIndexRepository(client, embedding.NewHashEmbedder(32))
	collection := CollectionNameForPath(dir)

	client.On("CreateCollection", mock.Anything, collection, mock.Anything).
		Return(&db.Collection{ID: "c1", Name: collection}, nil)
	client.On("AddDocuments", mock.Anything, collection, []string{"a", "b"}, []string{"alpha", "beta"}, mock.Anything, mock.MatchedBy(func(metas []map[string]interface{}) bool {
		return len(metas) == 2 && metas[0]["seq"] == int64(0) && metas[1]["seq"] == int64(1)
	})).Return(nil).Once()
	client.On("Query", mock.Anything, collection, mock.Anything, 2).Return(&db.QueryResponse{
		IDs:       [][]string{{"b", "a"}},
		Documents: [][]string{{"beta", "alpha"}},
		Distances: [][]float32{{0.2, 0.2}},
		Metadatas: [][]map[string]interface{}{{
			{"source": "doc.txt", "page": float64(0), "seq": float64(1)},
			{"source": "doc.txt", "page": float64(0), "seq": float64(0)},
		}},
	}, nil)

	idx, err := repo.Open(ctx, dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ChromaMarkerFileName))

	n, err := idx.Add(ctx, []models.Chunk{chunk("a", "alpha"), chunk("b", "beta")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Search(ctx, "alpha", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ChunkID, "equal scores keep insertion order")
	assert.InDelta(t, 0.8, hits[0].Score, 1e-6)
	assert.Equal(t, "doc.txt", hits[0].Source)

	client.AssertExpectations(t)
}

func TestChromaIndexRepository_ReopenKeepsSequence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	client := new(mockChromaClient)
	client.On("CreateCollection", mock.Anything, mock.Anything, mock.Anything).Return(&db.Collection{}, nil)
	client.On("AddDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	idx, err := NewChromaIndexRepository(client, embedding.NewHashEmbedder(16)).Open(ctx, dir)
	require.NoError(t, err)
	_, err = idx.Add(ctx, []models.Chunk{chunk("a", "alpha")})
	require.NoError(t, err)

	marker, err := readChromaMarker(filepath.Join(dir, ChromaMarkerFileName))
	require.NoError(t, err)
	assert.Equal(t, int64(1), marker.NextSeq)

	reopened, err := NewChromaIndexRepository(client, embedding.NewHashEmbedder(8)).Open(ctx, dir)
	require.NoError(t, err)

	_, err = reopened.Search(ctx, "alpha", 1)
	assert.ErrorIs(t, err, models.ErrIndexMismatch)
}

func TestChromaIndexRepository_Drop(t *testing.T) {
	ctx := context.Background()

	t.Run("without marker", func(t *testing.T) {
		client := new(mockChromaClient)
		repo := NewChromaIndexRepository(client, embedding.NewHashEmbedder(16))
		require.NoError(t, repo.Drop(ctx, t.TempDir()))
		client.AssertNotCalled(t, "DeleteCollection", mock.Anything, mock.Anything)
	})

	t.Run("deletes collection", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ChromaMarkerFileName),
			[]byte(`{"collection":"rag_x_1234","embedder":"hash","dimension":16}`), 0o644))

		client := new(mockChromaClient)
		client.On("DeleteCollection", mock.Anything, "rag_x_1234").Return(db.ErrCollectionNotFound)

		repo := NewChromaIndexRepository(client, embedding.NewHashEmbedder(16))
		require.NoError(t, repo.Drop(ctx, dir), "already-missing collection is not an error")
		client.AssertExpectations(t)
	})
}
