package infrastructure

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wagerhub/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels:       map[string]string{"test": "wagerhub-infrastructure", "cleanup": "auto"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisTokenRateCache_Integration(t *testing.T) {
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, setupRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := NewRedisTokenRateCache(rdb, time.Minute)

	t.Run("miss", func(t *testing.T) {
		rate, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, rate)
	})

	t.Run("set then get", func(t *testing.T) {
		admin := int64(1)
		require.NoError(t, cache.Set(ctx, &entities.TokenRate{ID: 4, Rate: decimal.RequireFromString("125.5"), SetBy: &admin}))

		rate, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, int64(4), rate.ID)
		assert.True(t, rate.Rate.Equal(decimal.RequireFromString("125.5")))
	})

	t.Run("older rate does not replace newer", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, &entities.TokenRate{ID: 3, Rate: decimal.NewFromInt(90)}))

		rate, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, int64(4), rate.ID)
	})

	t.Run("newer rate replaces cached", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, &entities.TokenRate{ID: 5, Rate: decimal.NewFromInt(140)}))

		rate, err := cache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, int64(5), rate.ID)
		assert.True(t, rate.Rate.Equal(decimal.NewFromInt(140)))
	})

	t.Run("fill only on empty cache", func(t *testing.T) {
		// a slow reader holding the rate it read before ID 5 was committed
		require.NoError(t, cache.SetIfAbsent(ctx, &entities.TokenRate{ID: 4, Rate: decimal.RequireFromString("125.5")}))
		rate, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), rate.ID)

		require.NoError(t, rdb.Del(ctx, tokenRateKey).Err())
		require.NoError(t, cache.SetIfAbsent(ctx, &entities.TokenRate{ID: 5, Rate: decimal.NewFromInt(140)}))
		rate, err = cache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, int64(5), rate.ID)
	})

	t.Run("entries expire", func(t *testing.T) {
		ttl, err := rdb.PTTL(ctx, tokenRateKey).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://not-redis")
	assert.ErrorContains(t, err, "REDIS_URL")
}
