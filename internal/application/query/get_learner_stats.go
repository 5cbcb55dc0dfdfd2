package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
	"github.com/learnhub/learning-platform/pkg/logger"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEARNER STATS QUERY
// Агрегирует записи прогресса пользователя в сводку для профиля:
// сколько курсов начато, сколько завершено, средний процент.
// Сводка читается на каждый показ профиля, поэтому кешируется; кеш
// сбрасывается обработчиком события course.progress_updated.
// ══════════════════════════════════════════════════════════════════════════════

// GetLearnerStatsQuery содержит параметры запроса статистики.
type GetLearnerStatsQuery struct {
	// UserID - пользователь.
	UserID int64
}

// Validate проверяет корректность параметров.
func (q GetLearnerStatsQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.New("get_learner_stats: user_id is required")
	}
	return nil
}

// LearnerStatsDTO - сводная статистика обучения.
type LearnerStatsDTO struct {
	UserID int64 `json:"user_id"`

	// TotalCourses - количество курсов с записью прогресса.
	TotalCourses int `json:"total_courses"`

	// CompletedCourses - количество завершённых курсов.
	CompletedCourses int `json:"completed_courses"`

	// AverageProgress - средний процент по начатым курсам, 0 если курсов нет.
	AverageProgress int `json:"average_progress"`

	GeneratedAt time.Time `json:"generated_at"`
}

// GetLearnerStatsHandler обрабатывает запросы статистики обучения.
type GetLearnerStatsHandler struct {
	progressRepo course.ProgressRepository
	statsCache   *redis.StatsCache
	log          *logger.Logger
}

// NewGetLearnerStatsHandler создаёт новый обработчик.
// statsCache может быть nil - тогда каждый запрос считается заново.
func NewGetLearnerStatsHandler(
	progressRepo course.ProgressRepository,
	statsCache *redis.StatsCache,
	log *logger.Logger,
) *GetLearnerStatsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetLearnerStatsHandler{
		progressRepo: progressRepo,
		statsCache:   statsCache,
		log:          log.With(logger.Component("query.learner_stats")),
	}
}

// Handle выполняет запрос.
func (h *GetLearnerStatsHandler) Handle(ctx context.Context, query GetLearnerStatsQuery) (*LearnerStatsDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLearnerStats", shared.ErrValidation, err.Error(), err)
	}

	if h.statsCache != nil {
		cached, err := h.statsCache.Get(ctx, query.UserID)
		if err == nil {
			return &LearnerStatsDTO{
				UserID:           cached.UserID,
				TotalCourses:     cached.TotalCourses,
				CompletedCourses: cached.CompletedCourses,
				AverageProgress:  cached.AverageProgress,
				GeneratedAt:      timeutil.NowUTC(),
			}, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			// Недоступный кеш не ломает запрос.
			h.log.Warn("stats cache read failed", logger.UserID(query.UserID), logger.Err(err))
		}
	}

	records, err := h.progressRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_learner_stats: failed to list progress: %w", err)
	}

	stats := computeStats(query.UserID, records)

	if h.statsCache != nil {
		if err := h.statsCache.Set(ctx, &redis.CachedStats{
			UserID:           stats.UserID,
			TotalCourses:     stats.TotalCourses,
			CompletedCourses: stats.CompletedCourses,
			AverageProgress:  stats.AverageProgress,
		}); err != nil {
			h.log.Warn("stats cache write failed", logger.UserID(query.UserID), logger.Err(err))
		}
	}

	return stats, nil
}

// computeStats агрегирует записи прогресса в сводку.
func computeStats(userID int64, records []course.CourseProgress) *LearnerStatsDTO {
	stats := &LearnerStatsDTO{
		UserID:      userID,
		GeneratedAt: timeutil.NowUTC(),
	}

	if len(records) == 0 {
		return stats
	}

	sum := 0
	for i := range records {
		sum += records[i].ProgressPercentage
		if records[i].IsCompleted() {
			stats.CompletedCourses++
		}
	}

	stats.TotalCourses = len(records)
	stats.AverageProgress = sum / len(records)
	return stats
}
