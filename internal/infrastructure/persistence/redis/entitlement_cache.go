package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/subscription"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITLEMENT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// CachedEntitlement is the cached view of a user's premium access.
type CachedEntitlement struct {
	UserID    int64      `json:"user_id"`
	PlanID    int64      `json:"plan_id"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// EntitlementCache keeps the per-user premium flag hot so premium content
// checks do not hit PostgreSQL on every request. Entries are dropped on
// every subscription transition and expire on their own after
// TTLEntitlementCache as a safety net.
type EntitlementCache struct {
	cache *Cache
}

// NewEntitlementCache creates a new EntitlementCache.
func NewEntitlementCache(cache *Cache) *EntitlementCache {
	return &EntitlementCache{cache: cache}
}

// Get returns the cached entitlement for a user, or ErrCacheMiss.
func (ec *EntitlementCache) Get(ctx context.Context, userID int64) (*CachedEntitlement, error) {
	var ent CachedEntitlement
	if err := ec.cache.Get(ctx, EntitlementKey(userID), &ent); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("entitlement cache get: %w", err)
	}
	return &ent, nil
}

// Set stores a user's entitlement derived from their active subscription.
// A nil subscription is cached as an explicit "no access" entry so repeated
// checks for free users are also served from Redis.
func (ec *EntitlementCache) Set(ctx context.Context, userID int64, sub *subscription.Subscription) error {
	ent := CachedEntitlement{UserID: userID}
	if sub != nil {
		ent.PlanID = sub.PlanID
		ent.Active = sub.IsActive(time.Now().UTC())
		ent.ExpiresAt = sub.ExpiresAt
	}
	return ec.cache.Set(ctx, EntitlementKey(userID), ent, TTLEntitlementCache)
}

// Invalidate drops the cached entitlement for a user.
func (ec *EntitlementCache) Invalidate(ctx context.Context, userID int64) error {
	return ec.cache.Delete(ctx, EntitlementKey(userID))
}
