package redis

import (
	"context"
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// CachedStats is the cached aggregate of a learner's activity.
type CachedStats struct {
	UserID           int64 `json:"user_id"`
	TotalCourses     int   `json:"total_courses"`
	CompletedCourses int   `json:"completed_courses"`
	AverageProgress  int   `json:"average_progress"`
}

// StatsCache keeps per-user learning statistics. The aggregate is cheap to
// compute but sits on a hot profile endpoint, so it is cached and dropped
// whenever the user's progress changes.
type StatsCache struct {
	cache *Cache
}

// NewStatsCache creates a new StatsCache.
func NewStatsCache(cache *Cache) *StatsCache {
	return &StatsCache{cache: cache}
}

// Get returns cached stats for a user, or ErrCacheMiss.
func (sc *StatsCache) Get(ctx context.Context, userID int64) (*CachedStats, error) {
	var stats CachedStats
	if err := sc.cache.Get(ctx, StatsKey(userID), &stats); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("stats cache get: %w", err)
	}
	return &stats, nil
}

// Set stores stats with the default TTL.
func (sc *StatsCache) Set(ctx context.Context, stats *CachedStats) error {
	if stats == nil {
		return ErrCacheNilValue
	}
	return sc.cache.Set(ctx, StatsKey(stats.UserID), stats, TTLStatsCache)
}

// Invalidate drops the cached stats for a user.
func (sc *StatsCache) Invalidate(ctx context.Context, userID int64) error {
	return sc.cache.Delete(ctx, StatsKey(userID))
}
