package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const loginAttemptsKeyPrefix = "wagerhub:login_attempts:"

// RedisRateLimiter is a sliding window limiter shared by every API instance.
// Each attempt is a sorted set member scored by its timestamp.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisRateLimiter allows limit attempts per key within window
func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow records an attempt for key and reports whether it is within the limit.
// When it is not, the returned duration is how long until the oldest attempt expires.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	redisKey := loginAttemptsKeyPrefix + key
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	count := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to read login attempts: %w", err)
	}

	if count.Val() >= int64(l.limit) {
		retryAfter := l.window
		if entries := oldest.Val(); len(entries) > 0 {
			retryAfter = time.Unix(0, int64(entries[0].Score)).Add(l.window).Sub(now)
		}
		return false, retryAfter, nil
	}

	pipe = l.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to record login attempt: %w", err)
	}
	return true, 0, nil
}
