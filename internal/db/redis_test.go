package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name          string
		config        RedisConfig
		wantNamespace string
		wantErr       bool
	}{
		{
			name:          "empty config uses defaults",
			config:        RedisConfig{},
			wantNamespace: "rag",
		},
		{
			name:          "namespace is trimmed",
			config:        RedisConfig{Host: "redis.example.com", Port: 6380, Namespace: "chat:"},
			wantNamespace: "chat",
		},
		{
			name:    "invalid port",
			config:  RedisConfig{Port: 70000},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer client.Close()

			assert.Equal(t, tt.wantNamespace, client.namespace)
			assert.Equal(t, tt.wantNamespace+":lock:docs", client.Key("lock:docs"))
		})
	}
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6379, cfg.Port)
	assert.Equal(t, "rag", cfg.Namespace)
	assert.Equal(t, 3*time.Second, cfg.OpTimeout)
}

func connectTestRedis(t *testing.T) *RedisClient {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg := DefaultRedisConfig()
	cfg.DB = 15
	cfg.Namespace = "rag-test-" + uuid.NewString()
	client, err := NewRedisClient(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		t.Skipf("Redis not reachable: %v", err)
	}
	return client
}

func TestRedisClient_Lease(t *testing.T) {
	client := connectTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	ok, err := client.AcquireLease(ctx, "lock:docs", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLease(ctx, "lock:docs", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held by a")

	released, err := client.ReleaseLease(ctx, "lock:docs", "b")
	require.NoError(t, err)
	assert.False(t, released, "b does not own the lease")

	released, err = client.ReleaseLease(ctx, "lock:docs", "a")
	require.NoError(t, err)
	assert.True(t, released)

	ok, err = client.AcquireLease(ctx, "lock:docs", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	_, _ = client.ReleaseLease(ctx, "lock:docs", "b")

	_, err = client.AcquireLease(ctx, "lock:docs", "c", 0)
	assert.Error(t, err)
}

func TestRedisClient_MarkOnce(t *testing.T) {
	client := connectTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	first, err := client.MarkOnce(ctx, "dup:fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = client.MarkOnce(ctx, "dup:fp", time.Minute)
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, client.Forget(ctx, "dup:fp"))
	first, err = client.MarkOnce(ctx, "dup:fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	_ = client.Forget(ctx, "dup:fp")
}
