package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
	"github.com/learnhub/learning-platform/pkg/logger"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ENTITLEMENT QUERY
// Отвечает на вопрос "есть ли у пользователя доступ к премиум-контенту
// прямо сейчас". Проверка стоит на горячем пути раздачи видео, поэтому
// ответ кешируется с коротким TTL; отсутствие подписки кешируется тоже.
// Кеш сбрасывается обработчиком событий subscription.*.
// ══════════════════════════════════════════════════════════════════════════════

// GetEntitlementQuery содержит параметры проверки доступа.
type GetEntitlementQuery struct {
	// UserID - проверяемый пользователь.
	UserID int64
}

// Validate проверяет корректность параметров.
func (q GetEntitlementQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.New("get_entitlement: user_id is required")
	}
	return nil
}

// EntitlementDTO - результат проверки доступа.
type EntitlementDTO struct {
	UserID int64 `json:"user_id"`

	// Active - true, если премиум-доступ действует в момент проверки.
	Active bool `json:"active"`

	// PlanID - план активной подписки, 0 если доступа нет.
	PlanID int64 `json:"plan_id,omitempty"`

	// ExpiresAt - конец оплаченного окна, nil если доступа нет.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GetEntitlementHandler обрабатывает проверки премиум-доступа.
type GetEntitlementHandler struct {
	subRepo          subscription.Repository
	entitlementCache *redis.EntitlementCache
	log              *logger.Logger
}

// NewGetEntitlementHandler создаёт новый обработчик.
// entitlementCache может быть nil - тогда каждая проверка идёт в БД.
func NewGetEntitlementHandler(
	subRepo subscription.Repository,
	entitlementCache *redis.EntitlementCache,
	log *logger.Logger,
) *GetEntitlementHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetEntitlementHandler{
		subRepo:          subRepo,
		entitlementCache: entitlementCache,
		log:              log.With(logger.Component("query.entitlement")),
	}
}

// Handle выполняет проверку.
func (h *GetEntitlementHandler) Handle(ctx context.Context, query GetEntitlementQuery) (*EntitlementDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetEntitlement", shared.ErrValidation, err.Error(), err)
	}

	now := timeutil.NowUTC()

	if h.entitlementCache != nil {
		cached, err := h.entitlementCache.Get(ctx, query.UserID)
		if err == nil {
			return entitlementFromCache(cached, now), nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			h.log.Warn("entitlement cache read failed", logger.UserID(query.UserID), logger.Err(err))
		}
	}

	sub, err := h.subRepo.GetActiveByUser(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_entitlement: failed to get subscription: %w", err)
	}

	if h.entitlementCache != nil {
		if err := h.entitlementCache.Set(ctx, query.UserID, sub); err != nil {
			h.log.Warn("entitlement cache write failed", logger.UserID(query.UserID), logger.Err(err))
		}
	}

	dto := &EntitlementDTO{UserID: query.UserID}
	if sub != nil && sub.IsActive(now) {
		dto.Active = true
		dto.PlanID = sub.PlanID
		dto.ExpiresAt = sub.ExpiresAt
	}
	return dto, nil
}

// entitlementFromCache строит DTO из кешированной записи.
// Срок действия перепроверяется: запись могла протухнуть внутри TTL.
func entitlementFromCache(cached *redis.CachedEntitlement, now time.Time) *EntitlementDTO {
	dto := &EntitlementDTO{UserID: cached.UserID}
	if !cached.Active {
		return dto
	}
	if cached.ExpiresAt != nil && !cached.ExpiresAt.After(now) {
		return dto
	}
	dto.Active = true
	dto.PlanID = cached.PlanID
	dto.ExpiresAt = cached.ExpiresAt
	return dto
}
