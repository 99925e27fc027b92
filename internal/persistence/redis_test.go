package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
)

func TestNewRedisWithoutAddress(t *testing.T) {
	r := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
	require.Nil(t, r)
	require.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.RedisConfig{
		Addr:        "cache:6379",
		Password:    "secret",
		DB:          2,
		DialTimeout: 2 * time.Second,
		PoolSize:    20,
	})
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 2*time.Second, opts.DialTimeout)
	require.Equal(t, 20, opts.PoolSize)
}
