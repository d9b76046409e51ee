package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot/config"
	"rag-chatbot/internal/loader/loadertest"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

// fill repeats word until the text is exactly n characters long
func fill(word string, n int) string {
	return strings.Repeat(word+" ", n/len(word)+1)[:n]
}

func TestIngest_ChunksAndRetrievesMiddleChunk(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	// "zebra" only appears in [1000, 1600), which only the second chunk covers
	text := fill("apple", 1000) + fill("zebra", 600) + fill("mango", 900)
	require.Len(t, text, 2500)

	summary, err := env.ingestion.Ingest(ctx, IngestRequest{
		StoreName: "docs",
		Files:     []UploadedFile{{Name: "fruit.txt", Data: []byte(text)}},
	})
	require.NoError(t, err)
	assert.Equal(t, IngestStatusOK, summary.Status)
	assert.Equal(t, 3, summary.ChunksAdded)
	assert.Equal(t, 3, summary.TotalChunks)
	assert.Equal(t, "✅ Added 3 chunks to the vector database.", summary.Message)
	assert.Equal(t, []string{"fruit.txt"}, summary.Files)
	assert.NoError(t, summary.Err())

	hits, err := env.retrieval.Search(ctx, env.stores.Path("docs"), "zebra", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, text[800:1800], hits[0].Text)

	meta, err := env.ingestion.metaRepo.Read(env.stores.Path("docs"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fruit.txt"}, meta.Files)
	assert.Equal(t, 3, meta.TotalChunks)
	_, err = time.Parse(models.MetadataTimeFormat, meta.CreatedAt)
	assert.NoError(t, err)
}

func TestIngest_ProgressPerBatch(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Ingestion.BatchSize = 2
	})

	// 5 chunks of 1000 with overlap 200 need 4200 characters
	text := fill("lorem", 4200)

	var updates []Progress
	summary, err := env.ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "progress",
		Files:     []UploadedFile{{Name: "long.txt", Data: []byte(text)}},
		Progress:  func(p Progress) { updates = append(updates, p) },
	})
	require.NoError(t, err)
	require.Equal(t, 5, summary.ChunksAdded)

	require.Len(t, updates, 3)
	assert.Equal(t, []int{2, 4, 5}, []int{updates[0].Processed, updates[1].Processed, updates[2].Processed})
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Percent, updates[i-1].Percent)
	}
	last := updates[len(updates)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, "Embedding chunks... 100% complete (5/5) | ~0s left", last.Message)
}

func TestIngest_PartialFailure(t *testing.T) {
	env := newTestEnv(t, nil)

	summary, err := env.ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "mixed",
		Files: []UploadedFile{
			{Name: "good.txt", Data: []byte("solar panels convert sunlight into electricity")},
			{Name: "broken.pdf", Data: []byte("%PDF-1.4 this is not really a pdf")},
			{Name: "report.pdf", Data: loadertest.PDF("wind turbines", "hydro power")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, IngestStatusPartial, summary.Status)
	assert.Equal(t, []string{"good.txt", "report.pdf"}, summary.Files)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "broken.pdf", summary.Skipped[0].Name)
	assert.Equal(t, 3, summary.ChunksAdded)
	assert.ErrorIs(t, summary.Err(), models.ErrPartialIngest)
}

func TestIngest_ZipMembersAndUnsupported(t *testing.T) {
	env := newTestEnv(t, nil)

	archive := loadertest.Zip(
		[]string{"notes/a.txt", "notes/b.pdf", "notes/image.png"},
		map[string][]byte{
			"notes/a.txt":     []byte("alpha notes"),
			"notes/b.pdf":     loadertest.PDF("bravo page"),
			"notes/image.png": []byte("png"),
		},
	)

	summary, err := env.ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "zipped",
		Files: []UploadedFile{
			{Name: "bundle.zip", Data: archive},
			{Name: "sheet.xlsx", Data: []byte("xlsx")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.pdf"}, summary.Files)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "sheet.xlsx", summary.Skipped[0].Name)

	meta, err := env.ingestion.metaRepo.Read(env.stores.Path("zipped"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.pdf"}, meta.Files)
}

func TestIngest_NoContentLeavesStoreUntouched(t *testing.T) {
	env := newTestEnv(t, nil)

	summary, err := env.ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "empty",
		Files:     []UploadedFile{{Name: "blank.txt", Data: []byte("   \n\t  ")}},
	})
	require.NoError(t, err)

	assert.Equal(t, IngestStatusNoContent, summary.Status)
	assert.Equal(t, "No chunks to embed.", summary.Message)
	assert.Equal(t, 0, summary.ChunksAdded)
	assert.False(t, env.stores.Exists("empty"))
}

func TestIngest_IncrementalTotals(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for _, name := range []string{"one.txt", "two.txt"} {
		_, err := env.ingestion.Ingest(ctx, IngestRequest{
			StoreName: "grow",
			Files:     []UploadedFile{{Name: name, Data: []byte("content of " + name)}},
		})
		require.NoError(t, err)
	}

	meta, err := env.ingestion.metaRepo.Read(env.stores.Path("grow"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.TotalChunks, "total follows the index, not the last batch")
	assert.Equal(t, []string{"two.txt"}, meta.Files)
}

func TestIngest_TempDirRemoved(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "tmp",
		Files:     []UploadedFile{{Name: "a.txt", Data: []byte("hello")}},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(env.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngest_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.ingestion.Ingest(ctx, IngestRequest{StoreName: "../etc", Files: []UploadedFile{{Name: "a.txt"}}})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = env.ingestion.Ingest(ctx, IngestRequest{StoreName: "docs"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestIngest_CancelledContext(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.ingestion.Ingest(ctx, IngestRequest{
		StoreName: "cancelled",
		Files:     []UploadedFile{{Name: "a.txt", Data: []byte("hello")}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// failingIndexRepository opens indexes whose Add fails once okBatches batches went through
type failingIndexRepository struct {
	repositories.IndexRepository
	okBatches int
}

func (r *failingIndexRepository) Open(ctx context.Context, path string) (repositories.Index, error) {
	idx, err := r.IndexRepository.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &failingIndex{Index: idx, okBatches: r.okBatches}, nil
}

type failingIndex struct {
	repositories.Index
	okBatches int
	batches   int
}

func (i *failingIndex) Add(ctx context.Context, chunks []models.Chunk) (int, error) {
	if i.batches >= i.okBatches {
		return 0, errors.New("embedding service unavailable")
	}
	i.batches++
	return i.Index.Add(ctx, chunks)
}

func TestIngest_MidwayFailureRecordsAddedChunks(t *testing.T) {
	env := newTestEnv(t, nil)
	cfg := config.Default().Ingestion
	cfg.BatchSize = 2

	metaRepo := repositories.NewFileMetadataRepository()
	ingestion, err := NewIngestionService(cfg, env.tempDir, env.stores,
		&failingIndexRepository{IndexRepository: env.indexRepo, okBatches: 1},
		metaRepo, repositories.NewMemoryLockRepository(), env.retrieval, testLogger())
	require.NoError(t, err)

	_, err = ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "flaky",
		Files:     []UploadedFile{{Name: "long.txt", Data: []byte(fill("lorem", 4200))}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding stopped after 2 of 5 chunks")

	meta, err := metaRepo.Read(env.stores.Path("flaky"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.TotalChunks)
	assert.Equal(t, []string{"long.txt"}, meta.Files)
}

func TestIngest_FailureBeforeFirstBatchWritesNoMetadata(t *testing.T) {
	env := newTestEnv(t, nil)
	metaRepo := repositories.NewFileMetadataRepository()
	ingestion, err := NewIngestionService(config.Default().Ingestion, env.tempDir, env.stores,
		&failingIndexRepository{IndexRepository: env.indexRepo},
		metaRepo, repositories.NewMemoryLockRepository(), env.retrieval, testLogger())
	require.NoError(t, err)

	_, err = ingestion.Ingest(context.Background(), IngestRequest{
		StoreName: "flaky",
		Files:     []UploadedFile{{Name: "a.txt", Data: []byte("hello world")}},
	})
	require.Error(t, err)

	_, err = metaRepo.Read(env.stores.Path("flaky"))
	assert.Error(t, err)
}

func TestComputeProgress(t *testing.T) {
	p := computeProgress(30, 120, 3*time.Second)
	assert.Equal(t, 25, p.Percent)
	assert.InDelta(t, 9.0, p.ETASeconds, 1e-9)
	assert.Equal(t, "Embedding chunks... 25% complete (30/120) | ~9s left", p.Message)

	done := computeProgress(120, 120, 12*time.Second)
	assert.Equal(t, 100, done.Percent)
	assert.Zero(t, done.ETASeconds)
}
