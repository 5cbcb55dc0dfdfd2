package eventhandler

import (
	"context"
	"log/slog"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SUBSCRIPTION CHANGED HANDLER
// Сбрасывает кеш entitlement при любом переходе подписки: создание,
// отмена, смена плана. Следующая проверка доступа пойдёт в PostgreSQL
// и запишет свежий ответ обратно в кеш.
// ═══════════════════════════════════════════════════════════════════════════

// OnSubscriptionChangedHandler обрабатывает события subscription.*.
type OnSubscriptionChangedHandler struct {
	entitlementCache *redis.EntitlementCache
	logger           *slog.Logger
}

// NewOnSubscriptionChangedHandler создаёт новый обработчик.
func NewOnSubscriptionChangedHandler(entitlementCache *redis.EntitlementCache, logger *slog.Logger) *OnSubscriptionChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnSubscriptionChangedHandler{
		entitlementCache: entitlementCache,
		logger:           logger.With("handler", "on_subscription_changed"),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnSubscriptionChangedHandler) Handle(event shared.Event) error {
	subEvent, ok := event.(shared.SubscriptionChangedEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	h.logger.Info("subscription transition",
		"event_type", event.EventType(),
		"user_id", subEvent.UserID,
		"plan_id", subEvent.PlanID,
	)

	if h.entitlementCache == nil {
		return nil
	}

	ctx := context.Background()
	if err := h.entitlementCache.Invalidate(ctx, subEvent.UserID); err != nil {
		h.logger.Warn("failed to invalidate entitlement cache",
			"user_id", subEvent.UserID,
			"error", err,
		)
		return err
	}

	return nil
}
