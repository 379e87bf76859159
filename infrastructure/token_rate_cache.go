package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wagerhub/domain/entities"

	"github.com/redis/go-redis/v9"
)

const tokenRateKey = "wagerhub:token_rate:current"

// RedisTokenRateCache keeps the current token rate in redis with a TTL
type RedisTokenRateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTokenRateCache caches rates in the given redis client
func NewRedisTokenRateCache(rdb *redis.Client, ttl time.Duration) *RedisTokenRateCache {
	return &RedisTokenRateCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached rate, or nil on a miss
func (c *RedisTokenRateCache) Get(ctx context.Context) (*entities.TokenRate, error) {
	raw, err := c.rdb.Get(ctx, tokenRateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached token rate: %w", err)
	}

	var rate entities.TokenRate
	if err := json.Unmarshal(raw, &rate); err != nil {
		return nil, fmt.Errorf("failed to decode cached token rate: %w", err)
	}
	return &rate, nil
}

// setNewer replaces the cached rate unless it has a higher ID.
// KEYS[1] cache key, ARGV[1] encoded rate, ARGV[2] rate ID, ARGV[3] TTL in ms.
var setNewer = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local ok, cached = pcall(cjson.decode, current)
	if ok and type(cached) == 'table' and tonumber(cached.id) and tonumber(cached.id) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// Set caches a freshly committed rate for the configured TTL. A rate with a
// higher ID already in the cache is kept.
func (c *RedisTokenRateCache) Set(ctx context.Context, rate *entities.TokenRate) error {
	raw, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to encode token rate: %w", err)
	}
	err = setNewer.Run(ctx, c.rdb, []string{tokenRateKey}, raw, rate.ID, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to cache token rate: %w", err)
	}
	return nil
}

// SetIfAbsent caches a rate read from the database, unless one is cached already
func (c *RedisTokenRateCache) SetIfAbsent(ctx context.Context, rate *entities.TokenRate) error {
	raw, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to encode token rate: %w", err)
	}
	if err := c.rdb.SetNX(ctx, tokenRateKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token rate: %w", err)
	}
	return nil
}
