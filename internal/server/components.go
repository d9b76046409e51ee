package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rag-chatbot/config"
	"rag-chatbot/internal/db"
	"rag-chatbot/internal/embedding"
	"rag-chatbot/internal/llm"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
	"rag-chatbot/internal/services"
)

// Components is the wired service graph shared by the HTTP server and the CLI
type Components struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Stores    *services.StoreService
	Retrieval *services.RetrievalService
	Ingestion *services.IngestionService
	Chat      *services.ChatService
	Sessions  *services.SessionManager
	Presets   []models.Preset
	Providers *llm.GuardedFactory

	closers []io.Closer
}

// NewLogger builds the process logger from configuration
func NewLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// Build connects the optional backends and wires every service
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Components, error) {
	c := &Components{Config: cfg, Logger: logger}

	embedder, err := embedding.New(ctx, cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if closer, ok := embedder.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	logger.Infof("Embedding model: %s (dimension %d)", embedder.Name(), embedder.Dimension())

	indexRepo, err := c.indexRepository(ctx, embedder)
	if err != nil {
		c.Close()
		return nil, err
	}

	locks, guard := c.coordination(ctx)

	presets, err := config.LoadPresets(cfg.Server.PresetsFile)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Presets = presets

	metaRepo := repositories.NewFileMetadataRepository()
	c.Retrieval = services.NewRetrievalService(indexRepo, cfg.Ingestion.RetrievalK, logger)

	c.Stores, err = services.NewStoreService(cfg.Storage.BaseDir, indexRepo, metaRepo, locks, c.Retrieval, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Ingestion, err = services.NewIngestionService(cfg.Ingestion, cfg.Storage.TempDir, c.Stores, indexRepo, metaRepo, locks, c.Retrieval, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Sessions = services.NewSessionManager(cfg.Session.IdleTimeout, cfg.Session.DuplicateWindow, guard, logger)
	c.Providers = llm.NewGuardedFactory(llm.NewClientFactory(cfg.LLM), cfg.LLM, logger)
	c.Chat = services.NewChatService(c.Providers, c.Retrieval, c.Stores, c.Sessions, cfg.LLM, cfg.Ingestion.RetrievalK, logger)

	logger.Infof("Stores under %s (backend: %s)", c.Stores.BaseDir(), indexRepo.Backend())
	return c, nil
}

func (c *Components) indexRepository(ctx context.Context, embedder embedding.Embedder) (repositories.IndexRepository, error) {
	if c.Config.Storage.IndexBackend != "chroma" {
		return repositories.NewLocalIndexRepository(embedder), nil
	}

	chromaCfg := db.ChromaDBConfig{
		Host:     c.Config.Chroma.Host,
		Port:     c.Config.Chroma.Port,
		Tenant:   c.Config.Chroma.Tenant,
		Database: c.Config.Chroma.Database,
		Timeout:  c.Config.Chroma.Timeout,
	}
	c.Logger.Infof("Connecting to ChromaDB: %s:%d", chromaCfg.Host, chromaCfg.Port)

	client := db.NewChromaDBClient(chromaCfg)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Heartbeat(pingCtx); err != nil {
		return nil, fmt.Errorf("ChromaDB connection failed (is it running on %s:%d?): %w", chromaCfg.Host, chromaCfg.Port, err)
	}
	c.Logger.Info("✅ ChromaDB connected successfully")

	c.closers = append(c.closers, closerFunc(func() error { client.Close(); return nil }))
	return repositories.NewChromaIndexRepository(client, embedder), nil
}

// coordination returns the store locks and duplicate guard, Redis-backed when enabled and reachable
func (c *Components) coordination(ctx context.Context) (repositories.LockRepository, repositories.GuardRepository) {
	if !c.Config.Redis.Enabled {
		return repositories.NewMemoryLockRepository(), repositories.NewMemoryGuardRepository()
	}

	redisCfg := db.DefaultRedisConfig()
	redisCfg.Host = c.Config.Redis.Host
	redisCfg.Port = c.Config.Redis.Port
	redisCfg.Password = c.Config.Redis.Password
	redisCfg.DB = c.Config.Redis.DB
	redisCfg.PoolSize = c.Config.Redis.PoolSize

	c.Logger.Infof("Connecting to Redis: %s:%d (DB: %d)", redisCfg.Host, redisCfg.Port, redisCfg.DB)
	client, err := db.NewRedisClient(redisCfg)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx)
		cancel()
		if err != nil {
			client.Close()
		}
	}
	if err != nil {
		c.Logger.Warnf("❌ Redis unavailable, using in-process locks: %v", err)
		return repositories.NewMemoryLockRepository(), repositories.NewMemoryGuardRepository()
	}

	c.Logger.Info("✅ Redis connected successfully")
	c.closers = append(c.closers, client)
	return repositories.NewRedisLockRepository(client), repositories.NewRedisGuardRepository(client)
}

// Close releases backend connections
func (c *Components) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.Logger.Warnf("Close failed: %v", err)
		}
	}
	c.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
