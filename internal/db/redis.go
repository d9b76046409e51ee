package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the coordination Redis. Every key is stored under Namespace.
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	PoolSize  int
	Namespace string
	OpTimeout time.Duration
}

// DefaultRedisConfig returns the settings used when nothing is configured
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:      "localhost",
		Port:      6379,
		PoolSize:  10,
		Namespace: "rag",
		OpTimeout: 3 * time.Second,
	}
}

// RedisClient holds the two primitives the server coordinates with:
// token-owned leases (store locks) and one-shot markers (duplicate submissions).
type RedisClient struct {
	client    *redis.Client
	namespace string
}

// releaseLease deletes a lease only while it still carries the caller's token
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient creates a client. It does not dial; call Ping to check reachability.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	defaults := DefaultRedisConfig()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = defaults.PoolSize
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = defaults.OpTimeout
	}
	cfg.Namespace = strings.Trim(cfg.Namespace, ":")
	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid redis port %d", cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.OpTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})
	return &RedisClient{client: client, namespace: cfg.Namespace}, nil
}

// Key places a key under the client's namespace
func (r *RedisClient) Key(key string) string {
	return r.namespace + ":" + key
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// AcquireLease takes key for token unless someone else holds it. The lease
// expires after ttl so a crashed holder cannot keep it forever.
func (r *RedisClient) AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("lease %s: ttl must be positive", key)
	}
	return r.client.SetNX(ctx, r.Key(key), token, ttl).Result()
}

// ReleaseLease drops the lease if token still owns it and reports whether it did.
// An expired lease taken over by another holder is left alone.
func (r *RedisClient) ReleaseLease(ctx context.Context, key, token string) (bool, error) {
	n, err := releaseLease.Run(ctx, r.client, []string{r.Key(key)}, token).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkOnce records key for window and reports whether this call was the first
func (r *RedisClient) MarkOnce(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	return r.client.SetNX(ctx, r.Key(key), 1, window).Result()
}

// Forget removes a marker so the next MarkOnce for key is first again
func (r *RedisClient) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.Key(key)).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
