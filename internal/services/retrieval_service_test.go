package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

type MockIndexRepository struct {
	mock.Mock
}

func (m *MockIndexRepository) Open(ctx context.Context, path string) (repositories.Index, error) {
	args := m.Called(ctx, path)
	if idx := args.Get(0); idx != nil {
		return idx.(repositories.Index), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIndexRepository) Drop(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockIndexRepository) Backend() string { return "mock" }

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Add(ctx context.Context, chunks []models.Chunk) (int, error) {
	args := m.Called(ctx, chunks)
	return args.Int(0), args.Error(1)
}

func (m *MockIndex) Search(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	args := m.Called(ctx, query, k)
	if hits := args.Get(0); hits != nil {
		return hits.([]models.SearchHit), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIndex) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockIndex) Dimension() int       { return 8 }
func (m *MockIndex) EmbedderName() string { return "mock" }

func TestRetrievalService_JoinsInRelevanceOrder(t *testing.T) {
	repo := new(MockIndexRepository)
	idx := new(MockIndex)
	repo.On("Open", mock.Anything, "/stores/docs").Return(idx, nil)
	idx.On("Search", mock.Anything, "what?", 3).Return([]models.SearchHit{
		{Text: "first"}, {Text: "second"}, {Text: "third"},
	}, nil)

	svc := NewRetrievalService(repo, 3, testLogger())
	got, err := svc.Retrieve(context.Background(), "what?", "/stores/docs", 0)

	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond\n\nthird", got)
}

func TestRetrievalService_EmptyStore(t *testing.T) {
	env := newTestEnv(t, nil)

	got, err := env.retrieval.Retrieve(context.Background(), "anything", env.stores.Path("fresh"), 3)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRetrievalService_Errors(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		repo := new(MockIndexRepository)
		repo.On("Open", mock.Anything, "/x").Return(nil, errors.New("disk on fire"))

		_, err := NewRetrievalService(repo, 3, testLogger()).Retrieve(context.Background(), "q", "/x", 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrRagRetrieval)
		assert.Contains(t, err.Error(), "⚠️ RAG Error: Could not retrieve context. Details: disk on fire")
	})

	t.Run("index mismatch stays detectable", func(t *testing.T) {
		repo := new(MockIndexRepository)
		idx := new(MockIndex)
		repo.On("Open", mock.Anything, "/x").Return(idx, nil)
		idx.On("Search", mock.Anything, "q", 3).Return(nil,
			repositories.NewIndexRepositoryError("search", "/x", models.NewIndexMismatchError("dimension 8 vs 16"), ""))

		_, err := NewRetrievalService(repo, 3, testLogger()).Retrieve(context.Background(), "q", "/x", 3)
		assert.ErrorIs(t, err, models.ErrRagRetrieval)
		assert.ErrorIs(t, err, models.ErrIndexMismatch)
	})
}

func TestRetrievalService_CacheAndInvalidate(t *testing.T) {
	repo := new(MockIndexRepository)
	idx := new(MockIndex)
	repo.On("Open", mock.Anything, "/stores/docs").Return(idx, nil)
	idx.On("Search", mock.Anything, "q", 2).Return([]models.SearchHit{{Text: "a"}}, nil)

	svc := NewRetrievalService(repo, 3, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Search(ctx, "/stores/docs", "q", 2)
		require.NoError(t, err)
	}
	idx.AssertNumberOfCalls(t, "Search", 1)
	assert.Equal(t, int64(2), svc.CacheStats()["hits"])

	svc.Invalidate("/stores/docs")
	_, err := svc.Search(ctx, "/stores/docs", "q", 2)
	require.NoError(t, err)
	idx.AssertNumberOfCalls(t, "Search", 2)
}

func TestSearchCache_Expiry(t *testing.T) {
	now := time.Now()
	cache := newSearchCache(time.Minute)
	cache.now = func() time.Time { return now }

	cache.Set("/s", "q", 3, []models.SearchHit{{Text: "a"}})
	_, ok := cache.Get("/s", "q", 3)
	assert.True(t, ok)

	_, ok = cache.Get("/s", "q", 4)
	assert.False(t, ok, "k is part of the key")

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("/s", "q", 3)
	assert.False(t, ok)
}
