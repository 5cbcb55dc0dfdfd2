// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROGRESS UPDATED HANDLER
// Сбрасывает кеш статистики пользователя при каждой записи прогресса.
// Статистика пересчитается лениво при следующем запросе профиля.
//
// Обработчик идемпотентен: повторная доставка события приводит к
// повторному удалению уже отсутствующего ключа.
// ═══════════════════════════════════════════════════════════════════════════

// OnProgressUpdatedHandler обрабатывает события course.progress_updated
// и course.completed.
type OnProgressUpdatedHandler struct {
	statsCache *redis.StatsCache
	logger     *slog.Logger
}

// NewOnProgressUpdatedHandler создаёт новый обработчик.
func NewOnProgressUpdatedHandler(statsCache *redis.StatsCache, logger *slog.Logger) *OnProgressUpdatedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnProgressUpdatedHandler{
		statsCache: statsCache,
		logger:     logger.With("handler", "on_progress_updated"),
	}
}

// Handle обрабатывает событие. Реализует shared.EventHandler.
func (h *OnProgressUpdatedHandler) Handle(event shared.Event) error {
	var userID int64

	switch e := event.(type) {
	case shared.ProgressUpdatedEvent:
		userID = e.UserID
	case shared.CourseCompletedEvent:
		userID = e.UserID
		h.logger.Info("course completed",
			"user_id", e.UserID,
			"course_id", e.CourseID,
		)
	default:
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	if h.statsCache == nil {
		return nil
	}

	ctx := context.Background()
	if err := h.statsCache.Invalidate(ctx, userID); err != nil {
		// Кеш протухнет сам по TTL, поэтому ошибка не фатальна,
		// но ретрай на уровне шины не помешает.
		h.logger.Warn("failed to invalidate stats cache",
			"user_id", userID,
			"error", err,
		)
		return err
	}

	return nil
}
