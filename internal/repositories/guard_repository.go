package repositories

import (
	"context"
	"sync"
	"time"
)

const guardKeyPrefix = "dup:"

// GuardRepository remembers recently seen request fingerprints
type GuardRepository interface {
	// Seen records key for window and reports whether it was already recorded
	Seen(ctx context.Context, key string, window time.Duration) (bool, error)
	// Forget drops key so the same request can be submitted again right away
	Forget(ctx context.Context, key string) error
}

// MemoryGuardRepository is a process-local GuardRepository
type MemoryGuardRepository struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]time.Time
}

// NewMemoryGuardRepository creates a process-local guard
func NewMemoryGuardRepository() *MemoryGuardRepository {
	return &MemoryGuardRepository{
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

func (r *MemoryGuardRepository) Seen(_ context.Context, key string, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, expires := range r.entries {
		if !now.Before(expires) {
			delete(r.entries, k)
		}
	}

	if _, ok := r.entries[key]; ok {
		return true, nil
	}
	r.entries[key] = now.Add(window)
	return false, nil
}

func (r *MemoryGuardRepository) Forget(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

// RedisMarker is the subset of the Redis client used by the guard
type RedisMarker interface {
	MarkOnce(ctx context.Context, key string, window time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// RedisGuardRepository shares the guard between server instances
type RedisGuardRepository struct {
	client RedisMarker
}

// NewRedisGuardRepository creates a Redis-backed guard
func NewRedisGuardRepository(client RedisMarker) *RedisGuardRepository {
	return &RedisGuardRepository{client: client}
}

func (r *RedisGuardRepository) Seen(ctx context.Context, key string, window time.Duration) (bool, error) {
	first, err := r.client.MarkOnce(ctx, guardKeyPrefix+key, window)
	if err != nil {
		return false, NewIndexRepositoryError("guard", key, err, "")
	}
	return !first, nil
}

func (r *RedisGuardRepository) Forget(ctx context.Context, key string) error {
	if err := r.client.Forget(ctx, guardKeyPrefix+key); err != nil {
		return NewIndexRepositoryError("guard", key, err, "")
	}
	return nil
}
