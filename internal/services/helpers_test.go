package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"rag-chatbot/config"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/repositories"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type testEnv struct {
	stores    *StoreService
	retrieval *RetrievalService
	ingestion *IngestionService
	indexRepo *repositories.LocalIndexRepository
	tempDir   string
}

// newTestEnv wires the real local stack under a temp dir
func newTestEnv(t *testing.T, mutate func(cfg *config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.BaseDir = t.TempDir()
	cfg.Storage.TempDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	logger := testLogger()
	indexRepo := repositories.NewLocalIndexRepository(embedding.NewHashEmbedder(1024))
	metaRepo := repositories.NewFileMetadataRepository()
	locks := repositories.NewMemoryLockRepository()
	retrieval := NewRetrievalService(indexRepo, cfg.Ingestion.RetrievalK, logger)

	stores, err := NewStoreService(cfg.Storage.BaseDir, indexRepo, metaRepo, locks, retrieval, logger)
	require.NoError(t, err)

	ingestion, err := NewIngestionService(cfg.Ingestion, cfg.Storage.TempDir, stores, indexRepo, metaRepo, locks, retrieval, logger)
	require.NoError(t, err)

	return &testEnv{
		stores:    stores,
		retrieval: retrieval,
		ingestion: ingestion,
		indexRepo: indexRepo,
		tempDir:   cfg.Storage.TempDir,
	}
}
