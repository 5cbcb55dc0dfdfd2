package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/internal/infrastructure/payment"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE PLAN COMMAND
// Switches the user's active subscription to another plan. The switch mutates
// the existing row in place: no new billing period, no proration, dates stay
// as they were. Without an active subscription the operation falls back to a
// full subscribe, which does open a new period.
// ══════════════════════════════════════════════════════════════════════════════

// ChangePlanCommand contains the data to switch plans.
type ChangePlanCommand struct {
	// UserID is the user switching plans.
	UserID int64

	// PlanID is the target plan.
	PlanID int64
}

// Validate validates the command.
func (c ChangePlanCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("change_plan: user_id is required")
	}
	if c.PlanID <= 0 {
		return errors.New("change_plan: plan_id is required")
	}
	return nil
}

// ChangePlanResult contains the outcome of the switch.
type ChangePlanResult struct {
	SubscriptionID string     `json:"subscription_id"`
	PlanID         int64      `json:"plan_id"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`

	// Created is true when no active subscription existed and a new one
	// was opened instead of mutating in place.
	Created bool `json:"created"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ChangePlanHandler handles the ChangePlanCommand.
type ChangePlanHandler struct {
	planRepo       subscription.PlanRepository
	subRepo        subscription.Repository
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
}

// NewChangePlanHandler creates a new ChangePlanHandler.
func NewChangePlanHandler(
	planRepo subscription.PlanRepository,
	subRepo subscription.Repository,
	gateway payment.Gateway,
	eventPublisher shared.EventPublisher,
) *ChangePlanHandler {
	return &ChangePlanHandler{
		planRepo:       planRepo,
		subRepo:        subRepo,
		gateway:        gateway,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the change plan command.
func (h *ChangePlanHandler) Handle(ctx context.Context, cmd ChangePlanCommand) (*ChangePlanResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("subscription", "ChangePlan", shared.ErrValidation, "invalid request", err)
	}

	plan, err := h.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, fmt.Errorf("change_plan: failed to get plan: %w", err)
	}
	if !plan.IsActive {
		return nil, shared.ErrPlanInactive
	}

	sub, err := h.subRepo.GetActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("change_plan: failed to get subscription: %w", err)
	}

	if sub == nil {
		return h.createInstead(ctx, cmd, plan)
	}

	now := timeutil.NowUTC()
	sub.SwitchPlan(plan.ID, now)

	if err := h.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("change_plan: failed to save subscription: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewSubscriptionChangedEvent(
		shared.EventPlanChanged, sub.ID, sub.UserID, sub.PlanID,
	))

	return &ChangePlanResult{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		ExpiresAt:      sub.ExpiresAt,
		Created:        false,
	}, nil
}

// createInstead opens a fresh subscription for a user with nothing active.
func (h *ChangePlanHandler) createInstead(ctx context.Context, cmd ChangePlanCommand, plan *subscription.Plan) (*ChangePlanResult, error) {
	charge, err := h.gateway.Charge(ctx, payment.ChargeRequest{
		UserID:      cmd.UserID,
		PlanID:      plan.ID,
		AmountCents: plan.PriceMonthly,
		Currency:    "USD",
		Description: fmt.Sprintf("subscription to plan %q", plan.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("change_plan: charge failed: %w", err)
	}

	now := timeutil.NowUTC()
	sub := subscription.New(uuid.NewString(), charge.Reference, cmd.UserID, plan.ID, now)

	if err := h.subRepo.CreateSuperseding(ctx, sub); err != nil {
		return nil, fmt.Errorf("change_plan: failed to create subscription: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewSubscriptionChangedEvent(
		shared.EventSubscriptionCreated, sub.ID, sub.UserID, sub.PlanID,
	))

	return &ChangePlanResult{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		ExpiresAt:      sub.ExpiresAt,
		Created:        true,
	}, nil
}
