package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/learning-platform/internal/domain/subscription"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN CACHE
// ══════════════════════════════════════════════════════════════════════════════

// PlanCache keeps the list of purchasable plans hot. The plan catalog is
// read on every pricing page view but changes only on deploys, which makes
// it the cheapest cache win in the system.
type PlanCache struct {
	cache *Cache
}

// NewPlanCache creates a new PlanCache.
func NewPlanCache(cache *Cache) *PlanCache {
	return &PlanCache{cache: cache}
}

// GetActivePlans returns the cached plan list, or ErrCacheMiss.
func (pc *PlanCache) GetActivePlans(ctx context.Context) ([]subscription.Plan, error) {
	var plans []subscription.Plan
	if err := pc.cache.Get(ctx, PlanListKey(), &plans); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("plan cache get: %w", err)
	}
	return plans, nil
}

// SetActivePlans stores the plan list with the default TTL.
func (pc *PlanCache) SetActivePlans(ctx context.Context, plans []subscription.Plan) error {
	return pc.cache.Set(ctx, PlanListKey(), plans, TTLPlanCache)
}

// Invalidate drops the cached plan list.
func (pc *PlanCache) Invalidate(ctx context.Context) error {
	return pc.cache.Delete(ctx, PlanListKey())
}
