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
// SUBSCRIBE COMMAND
// Opens a new paid entitlement window. An existing active subscription is
// superseded, not rejected: the charge succeeds first, then the old active
// row and the new one swap inside a single transaction.
// ══════════════════════════════════════════════════════════════════════════════

// SubscribeCommand contains the data to open a subscription.
type SubscribeCommand struct {
	// UserID is the subscribing user.
	UserID int64

	// PlanID is the plan being purchased.
	PlanID int64

	// PaymentMethodID identifies the payment method at the processor.
	// Optional; empty falls back to the user's default method.
	PaymentMethodID string
}

// Validate validates the command.
func (c SubscribeCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("subscribe: user_id is required")
	}
	if c.PlanID <= 0 {
		return errors.New("subscribe: plan_id is required")
	}
	return nil
}

// SubscribeResult contains the opened subscription.
type SubscribeResult struct {
	SubscriptionID string              `json:"subscription_id"`
	PlanID         int64               `json:"plan_id"`
	Status         subscription.Status `json:"status"`
	StartedAt      time.Time           `json:"started_at"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`

	// Superseded is true when an earlier active subscription was displaced.
	Superseded bool `json:"superseded"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubscribeHandler handles the SubscribeCommand.
type SubscribeHandler struct {
	planRepo       subscription.PlanRepository
	subRepo        subscription.Repository
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
}

// NewSubscribeHandler creates a new SubscribeHandler.
func NewSubscribeHandler(
	planRepo subscription.PlanRepository,
	subRepo subscription.Repository,
	gateway payment.Gateway,
	eventPublisher shared.EventPublisher,
) *SubscribeHandler {
	return &SubscribeHandler{
		planRepo:       planRepo,
		subRepo:        subRepo,
		gateway:        gateway,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the subscribe command.
func (h *SubscribeHandler) Handle(ctx context.Context, cmd SubscribeCommand) (*SubscribeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("subscription", "Subscribe", shared.ErrValidation, "invalid request", err)
	}

	plan, err := h.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, fmt.Errorf("subscribe: failed to get plan: %w", err)
	}
	if !plan.IsActive {
		return nil, shared.ErrPlanInactive
	}

	existing, err := h.subRepo.GetActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("subscribe: failed to check active subscription: %w", err)
	}

	// The charge comes first. A failed charge must leave the subscription
	// history untouched.
	charge, err := h.gateway.Charge(ctx, payment.ChargeRequest{
		UserID:        cmd.UserID,
		PlanID:        plan.ID,
		AmountCents:   plan.PriceMonthly,
		Currency:      "USD",
		Description:   fmt.Sprintf("subscription to plan %q", plan.Name),
		PaymentMethod: cmd.PaymentMethodID,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe: charge failed: %w", err)
	}

	now := timeutil.NowUTC()
	sub := subscription.New(uuid.NewString(), charge.Reference, cmd.UserID, plan.ID, now)

	if err := h.subRepo.CreateSuperseding(ctx, sub); err != nil {
		return nil, fmt.Errorf("subscribe: failed to create subscription: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewSubscriptionChangedEvent(
		shared.EventSubscriptionCreated, sub.ID, sub.UserID, sub.PlanID,
	))

	return &SubscribeResult{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Status:         sub.Status,
		StartedAt:      sub.StartedAt,
		ExpiresAt:      sub.ExpiresAt,
		Superseded:     existing != nil,
	}, nil
}
