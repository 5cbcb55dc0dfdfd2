package subscription

import (
	"time"

	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE TRANSITIONS
// Конечный автомат: NONE -> ACTIVE -> CANCELLED.
//
// Subscribe вытесняет старую active-строку и вставляет новую (supersede).
// ChangePlan при наличии active-строки меняет план "на месте" - без новой
// строки и без пересчёта дат. Эта асимметрия намеренная: Subscribe создаёт
// новый расчётный период, ChangePlan - нет.
// ══════════════════════════════════════════════════════════════════════════════

// Фиксированная длительность оплаченного периода.
// Календарная логика месяцев не используется.
const (
	entitlementDays   = 30
	EntitlementPeriod = entitlementDays * 24 * time.Hour
)

// New создаёт новую активную подписку с окном действия [now, now+30d].
// ID и внешняя ссылка для платёжного коллаборатора генерируются вызывающим.
func New(id, externalRef string, userID, planID int64, now time.Time) *Subscription {
	expires := timeutil.WindowEnd(now, entitlementDays)
	return &Subscription{
		ID:          id,
		UserID:      userID,
		PlanID:      planID,
		Status:      StatusActive,
		StartedAt:   now,
		ExpiresAt:   &expires,
		ExternalRef: externalRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Supersede помечает подписку отменённой при оформлении новой.
// Срок действия не трогается - доступ по старой строке и так
// замещается новой активной подпиской.
func (s *Subscription) Supersede(now time.Time) {
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
}

// Cancel отменяет подписку по запросу пользователя. Доступ прекращается
// немедленно: если срок ещё не истёк (или бессрочный), expires_at
// подтягивается к now. Льготного периода нет.
func (s *Subscription) Cancel(now time.Time) {
	s.Status = StatusCancelled
	s.CancelledAt = &now
	if s.ExpiresAt == nil || s.ExpiresAt.After(now) {
		expires := now
		s.ExpiresAt = &expires
	}
	s.UpdatedAt = now
}

// SwitchPlan меняет тарифный план "на месте". Пропорциональный перерасчёт
// не выполняется, даты периода не пересчитываются, старая строка не
// вытесняется.
func (s *Subscription) SwitchPlan(planID int64, now time.Time) {
	s.PlanID = planID
	s.UpdatedAt = now
}
