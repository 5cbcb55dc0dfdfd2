package subscription

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence. Все мутации выполняются
// внутри одной транзакции: частичный supersede без insert невозможен.
// ══════════════════════════════════════════════════════════════════════════════

// PlanRepository определяет операции чтения тарифных планов.
type PlanRepository interface {
	// GetByID возвращает план по ID или shared.ErrPlanNotFound.
	GetByID(ctx context.Context, id int64) (*Plan, error)

	// ListActive возвращает все активные планы, упорядоченные по цене.
	ListActive(ctx context.Context) ([]Plan, error)
}

// Repository определяет операции с подписками пользователя.
type Repository interface {
	// GetActiveByUser возвращает активную подписку пользователя
	// или nil, если её нет.
	GetActiveByUser(ctx context.Context, userID int64) (*Subscription, error)

	// CreateSuperseding атомарно вытесняет текущую active-строку
	// пользователя (если есть) и вставляет новую. Частичный unique-индекс
	// на (user_id) WHERE status='active' защищает от гонки двух
	// одновременных Subscribe: проигравшая транзакция получает
	// shared.ErrConflict.
	CreateSuperseding(ctx context.Context, sub *Subscription) error

	// Update сохраняет мутацию существующей строки (Cancel, SwitchPlan).
	Update(ctx context.Context, sub *Subscription) error
}
