package server

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether another attempt for key is allowed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// MemoryRateLimiter is a per-process sliding window limiter, used when redis is not configured
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewMemoryRateLimiter allows limit attempts per key within window
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= l.limit {
		l.attempts[key] = recent
		return false, recent[0].Add(l.window).Sub(now), nil
	}

	l.attempts[key] = append(recent, now)
	l.sweep(cutoff)
	return true, 0, nil
}

// sweep drops keys with no attempts left in the window so the map stays bounded
func (l *MemoryRateLimiter) sweep(cutoff time.Time) {
	for key, attempts := range l.attempts {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
			delete(l.attempts, key)
		}
	}
}
