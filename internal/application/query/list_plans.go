package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/internal/infrastructure/persistence/redis"
	"github.com/learnhub/learning-platform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PLANS QUERY
// Возвращает каталог активных тарифных планов для страницы подписки.
// Список меняется только на деплоях, поэтому читается через кеш.
// ══════════════════════════════════════════════════════════════════════════════

// planFeatures - маркетинговый список возможностей по имени плана.
// Хранится в коде, а не в БД: список меняется вместе с продуктом.
var planFeatures = map[string][]string{
	"basic": {
		"access to all free courses",
		"progress tracking",
	},
	"pro": {
		"access to all courses",
		"progress tracking",
		"quizzes and certificates",
	},
	"premium": {
		"access to all courses",
		"progress tracking",
		"quizzes and certificates",
		"priority support",
	},
}

// ListPlansQuery содержит параметры запроса каталога планов.
// Параметров нет, но тип сохраняется ради единообразия обработчиков.
type ListPlansQuery struct{}

// PlanDTO - тарифный план для выдачи клиенту.
type PlanDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Цены в центах.
	PriceMonthly int64 `json:"price_monthly"`
	PriceYearly  int64 `json:"price_yearly"`

	Features []string `json:"features,omitempty"`
}

// ListPlansResult содержит каталог планов.
type ListPlansResult struct {
	Plans []PlanDTO `json:"plans"`
}

// ListPlansHandler обрабатывает запросы каталога планов.
type ListPlansHandler struct {
	planRepo  subscription.PlanRepository
	planCache *redis.PlanCache
	log       *logger.Logger
}

// NewListPlansHandler создаёт новый обработчик.
// planCache может быть nil - тогда каждый запрос идёт в БД.
func NewListPlansHandler(
	planRepo subscription.PlanRepository,
	planCache *redis.PlanCache,
	log *logger.Logger,
) *ListPlansHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ListPlansHandler{
		planRepo:  planRepo,
		planCache: planCache,
		log:       log.With(logger.Component("query.list_plans")),
	}
}

// Handle выполняет запрос.
func (h *ListPlansHandler) Handle(ctx context.Context, _ ListPlansQuery) (*ListPlansResult, error) {
	if h.planCache != nil {
		plans, err := h.planCache.GetActivePlans(ctx)
		if err == nil {
			return buildPlansResult(plans), nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			h.log.Warn("plan cache read failed", logger.Err(err))
		}
	}

	plans, err := h.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_plans: failed to list plans: %w", err)
	}

	if h.planCache != nil {
		if err := h.planCache.SetActivePlans(ctx, plans); err != nil {
			h.log.Warn("plan cache write failed", logger.Err(err))
		}
	}

	return buildPlansResult(plans), nil
}

// buildPlansResult превращает планы в DTO с прикреплёнными фичами.
func buildPlansResult(plans []subscription.Plan) *ListPlansResult {
	result := &ListPlansResult{Plans: make([]PlanDTO, 0, len(plans))}
	for i := range plans {
		p := &plans[i]
		result.Plans = append(result.Plans, PlanDTO{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			PriceMonthly: p.PriceMonthly,
			PriceYearly:  p.PriceYearly,
			Features:     planFeatures[p.Name],
		})
	}
	return result
}
