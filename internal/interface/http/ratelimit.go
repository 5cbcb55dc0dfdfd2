package http

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITING
// Two implementations behind one interface: a Redis counter shared by all
// instances, and an in-process sliding window for single-node deployments
// and tests.
// ══════════════════════════════════════════════════════════════════════════════

type limiter interface {
	// Allow reports whether the key may make another request.
	Allow(ctx context.Context, key string) bool
}

// ──────────────────────────────────────────────────────────────────────────────
// Redis-backed limiter
// ──────────────────────────────────────────────────────────────────────────────

// redisLimiter counts requests per key in a fixed window. The first INCR in
// a window creates the key and sets its TTL; the window resets when the key
// expires.
type redisLimiter struct {
	cache  *redis.Cache
	limit  int
	window time.Duration
}

func newRedisLimiter(cache *redis.Cache, limit int, window time.Duration) *redisLimiter {
	return &redisLimiter{cache: cache, limit: limit, window: window}
}

func (rl *redisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := rl.cache.Incr(ctx, redis.RateLimitKey(key, "http"))
	if err != nil {
		// An unreachable Redis must not cut off traffic.
		return true
	}
	if count == 1 {
		_ = rl.cache.Expire(ctx, redis.RateLimitKey(key, "http"), rl.window)
	}
	return count <= int64(rl.limit)
}

// ──────────────────────────────────────────────────────────────────────────────
// In-process limiter
// ──────────────────────────────────────────────────────────────────────────────

type memoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func newMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	ml := &memoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
	go ml.cleanup()
	return ml
}

func (ml *memoryLimiter) Allow(_ context.Context, key string) bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-ml.window)

	var valid []time.Time
	for _, t := range ml.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= ml.limit {
		ml.requests[key] = valid
		return false
	}

	ml.requests[key] = append(valid, now)
	return true
}

func (ml *memoryLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ml.mu.Lock()
		windowStart := time.Now().Add(-ml.window)
		for key, requests := range ml.requests {
			var valid []time.Time
			for _, t := range requests {
				if t.After(windowStart) {
					valid = append(valid, t)
				}
			}
			if len(valid) == 0 {
				delete(ml.requests, key)
			} else {
				ml.requests[key] = valid
			}
		}
		ml.mu.Unlock()
	}
}
