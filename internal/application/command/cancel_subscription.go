package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL SUBSCRIPTION COMMAND
// Ends the user's active subscription immediately. Cancelling when nothing
// is active is a successful no-op, which makes client retries harmless.
// ══════════════════════════════════════════════════════════════════════════════

// CancelSubscriptionCommand contains the data to cancel a subscription.
type CancelSubscriptionCommand struct {
	// UserID is the cancelling user.
	UserID int64
}

// Validate validates the command.
func (c CancelSubscriptionCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("cancel_subscription: user_id is required")
	}
	return nil
}

// StatusAcknowledged is the acknowledgment value every cancel response
// carries, including the no-op case.
const StatusAcknowledged = "canceled"

// CancelSubscriptionResult contains the cancellation outcome.
type CancelSubscriptionResult struct {
	// Status is always StatusAcknowledged.
	Status string `json:"status"`

	// Cancelled is false when there was nothing to cancel.
	Cancelled bool `json:"cancelled"`

	SubscriptionID string     `json:"subscription_id,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CancelSubscriptionHandler handles the CancelSubscriptionCommand.
type CancelSubscriptionHandler struct {
	subRepo        subscription.Repository
	eventPublisher shared.EventPublisher
}

// NewCancelSubscriptionHandler creates a new CancelSubscriptionHandler.
func NewCancelSubscriptionHandler(
	subRepo subscription.Repository,
	eventPublisher shared.EventPublisher,
) *CancelSubscriptionHandler {
	return &CancelSubscriptionHandler{
		subRepo:        subRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the cancel subscription command.
func (h *CancelSubscriptionHandler) Handle(ctx context.Context, cmd CancelSubscriptionCommand) (*CancelSubscriptionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("subscription", "Cancel", shared.ErrValidation, "invalid request", err)
	}

	sub, err := h.subRepo.GetActiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("cancel_subscription: failed to get subscription: %w", err)
	}
	if sub == nil {
		return &CancelSubscriptionResult{Status: StatusAcknowledged, Cancelled: false}, nil
	}

	now := timeutil.NowUTC()
	sub.Cancel(now)

	if err := h.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("cancel_subscription: failed to save subscription: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewSubscriptionChangedEvent(
		shared.EventSubscriptionCancelled, sub.ID, sub.UserID, sub.PlanID,
	))

	return &CancelSubscriptionResult{
		Status:         StatusAcknowledged,
		Cancelled:      true,
		SubscriptionID: sub.ID,
		CancelledAt:    sub.CancelledAt,
		ExpiresAt:      sub.ExpiresAt,
	}, nil
}
