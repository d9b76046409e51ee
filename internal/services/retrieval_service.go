package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

// DefaultRetrievalK is the number of chunks spliced into a RAG prompt
const DefaultRetrievalK = 3

// RetrievalService answers similarity queries against a store
type RetrievalService struct {
	indexRepo repositories.IndexRepository
	logger    *logrus.Logger
	cache     *searchCache
	defaultK  int
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(indexRepo repositories.IndexRepository, defaultK int, logger *logrus.Logger) *RetrievalService {
	if defaultK <= 0 {
		defaultK = DefaultRetrievalK
	}
	return &RetrievalService{
		indexRepo: indexRepo,
		logger:    logger,
		cache:     newSearchCache(5 * time.Minute),
		defaultK:  defaultK,
	}
}

// Retrieve returns the texts of the k most relevant chunks joined by blank lines,
// or "" when the store has nothing relevant
func (s *RetrievalService) Retrieve(ctx context.Context, question, storePath string, k int) (string, error) {
	hits, err := s.Search(ctx, storePath, question, k)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

// Search returns the scored hits for question, best first
func (s *RetrievalService) Search(ctx context.Context, storePath, question string, k int) ([]models.SearchHit, error) {
	if k <= 0 {
		k = s.defaultK
	}

	if cached, ok := s.cache.Get(storePath, question, k); ok {
		s.logger.Debugf("Cache hit for query in %s", storePath)
		return cached, nil
	}

	start := time.Now()
	idx, err := s.indexRepo.Open(ctx, storePath)
	if err != nil {
		s.logger.Errorf("Failed to open store %s: %v", storePath, err)
		return nil, models.NewRagRetrievalError(err)
	}

	hits, err := idx.Search(ctx, question, k)
	if err != nil {
		s.logger.Errorf("Search failed in %s: %v", storePath, err)
		return nil, models.NewRagRetrievalError(err)
	}

	s.logger.Infof("Retrieved %d chunks from %s in %.2fms", len(hits), storePath, time.Since(start).Seconds()*1000)
	s.cache.Set(storePath, question, k, hits)
	return hits, nil
}

// Invalidate drops cached results for one store
func (s *RetrievalService) Invalidate(storePath string) {
	s.cache.Invalidate(storePath)
}

// CacheStats returns cache statistics
func (s *RetrievalService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}

type searchCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]*cacheEntry // store path -> query key -> entry
	ttl     time.Duration
	now     func() time.Time
	hits    int64
	misses  int64
}

type cacheEntry struct {
	hits      []models.SearchHit
	expiresAt time.Time
}

func newSearchCache(ttl time.Duration) *searchCache {
	return &searchCache{
		entries: make(map[string]map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(question string, k int) string {
	return fmt.Sprintf("%d:%s", k, question)
}

func (c *searchCache) Get(storePath, question string, k int) ([]models.SearchHit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[storePath][cacheKey(question, k)]
	if !ok || c.now().After(entry.expiresAt) {
		c.misses++
		return nil, false
	}

	c.hits++
	out := make([]models.SearchHit, len(entry.hits))
	copy(out, entry.hits)
	return out, true
}

func (c *searchCache) Set(storePath, question string, k int, hits []models.SearchHit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byQuery, ok := c.entries[storePath]
	if !ok {
		byQuery = make(map[string]*cacheEntry)
		c.entries[storePath] = byQuery
	}

	now := c.now()
	for key, entry := range byQuery {
		if now.After(entry.expiresAt) {
			delete(byQuery, key)
		}
	}

	stored := make([]models.SearchHit, len(hits))
	copy(stored, hits)
	byQuery[cacheKey(question, k)] = &cacheEntry{
		hits:      stored,
		expiresAt: now.Add(c.ttl),
	}
}

func (c *searchCache) Invalidate(storePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, storePath)
}

func (c *searchCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := 0
	for _, byQuery := range c.entries {
		size += len(byQuery)
	}

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":     size,
		"hits":     c.hits,
		"misses":   c.misses,
		"hit_rate": hitRate,
		"ttl":      c.ttl.String(),
	}
}
