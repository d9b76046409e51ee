package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const lockKeyPrefix = "lock:"

// LockRepository serializes work on a store across goroutines or, with Redis, across processes
type LockRepository interface {
	// Acquire blocks until the lock is held or ctx is done. ttl bounds how long a crashed holder can keep it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// MemoryLockRepository is a process-local LockRepository
type MemoryLockRepository struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLockRepository creates a process-local lock repository
func NewMemoryLockRepository() *MemoryLockRepository {
	return &MemoryLockRepository{locks: make(map[string]chan struct{})}
}

func (r *MemoryLockRepository) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	r.mu.Lock()
	ch, ok := r.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[key] = ch
	}
	r.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}

// RedisLeaser is the subset of the Redis client used for locking
type RedisLeaser interface {
	AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key, token string) (bool, error)
}

// RedisLockRepository is a LockRepository shared by every server using the same Redis
type RedisLockRepository struct {
	client       RedisLeaser
	pollInterval time.Duration
}

// NewRedisLockRepository creates a Redis-backed lock repository
func NewRedisLockRepository(client RedisLeaser) *RedisLockRepository {
	return &RedisLockRepository{
		client:       client,
		pollInterval: 100 * time.Millisecond,
	}
}

func (r *RedisLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	leaseKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.AcquireLease(ctx, leaseKey, token, ttl)
		if err != nil {
			return nil, NewIndexRepositoryError("lock", key, err, "")
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, _ = r.client.ReleaseLease(releaseCtx, leaseKey, token)
		})
	}, nil
}
