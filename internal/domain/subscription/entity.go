// Package subscription содержит доменную модель платной подписки.
// Подписка управляет доступом к премиум-контенту платформы.
// Это чистый доменный слой - внешних зависимостей нет.
package subscription

import (
	"errors"
	"time"
)

// Доменные ошибки пакета subscription.
var (
	ErrInvalidUserID     = errors.New("subscription: invalid user ID")
	ErrInvalidPlanID     = errors.New("subscription: invalid plan ID")
	ErrInvalidStatus     = errors.New("subscription: invalid status")
	ErrAlreadyCancelled  = errors.New("subscription: already cancelled")
	ErrNotActive         = errors.New("subscription: subscription is not active")
	ErrPlanNotActive     = errors.New("subscription: plan is not active")
	ErrNegativePrice     = errors.New("subscription: price cannot be negative")
	ErrEmptyPlanName     = errors.New("subscription: plan name cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN
// ══════════════════════════════════════════════════════════════════════════════

// Plan - тарифный план. Для жизненного цикла подписки план доступен
// только на чтение.
type Plan struct {
	ID          int64
	Name        string
	Description string

	// Цены в минимальных единицах валюты (центы).
	PriceMonthly int64
	PriceYearly  int64

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты плана.
func (p *Plan) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidPlanID
	}
	if p.Name == "" {
		return ErrEmptyPlanName
	}
	if p.PriceMonthly < 0 || p.PriceYearly < 0 {
		return ErrNegativePrice
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние подписки.
type Status string

const (
	// StatusActive - подписка действует.
	StatusActive Status = "active"
	// StatusCancelled - подписка отменена или вытеснена новой.
	StatusCancelled Status = "cancelled"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusCancelled
}

// Subscription - одна строка истории подписок пользователя.
// У пользователя в любой момент времени не больше одной строки со
// статусом active; история append-only, кроме смены плана "на месте".
type Subscription struct {
	ID     string // UUID
	UserID int64
	PlanID int64
	Status Status

	StartedAt   time.Time
	ExpiresAt   *time.Time
	CancelledAt *time.Time

	// ExternalRef - идентификатор для платёжного коллаборатора.
	ExternalRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если подписка действует в момент now:
// статус active и срок ещё не истёк (nil expires_at - бессрочная).
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.ExpiresAt == nil {
		return true
	}
	return s.ExpiresAt.After(now)
}
