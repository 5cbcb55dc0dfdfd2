// Package payment integrates the subscription lifecycle with the payment
// collaborator. The real processor lives outside this system; what matters
// here is the contract: Charge either succeeds and yields an external
// reference, or the whole subscription operation fails.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/pkg/circuitbreaker"
	"github.com/learnhub/learning-platform/pkg/logger"
	"github.com/learnhub/learning-platform/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// ChargeRequest describes a single charge against a user.
type ChargeRequest struct {
	UserID      int64
	PlanID      int64
	AmountCents int64
	Currency    string
	Description string

	// PaymentMethod is the processor-side payment method identifier.
	// Empty means the user's default method.
	PaymentMethod string
}

// ChargeResult is the outcome of a successful charge.
type ChargeResult struct {
	// Reference is the processor-side identifier stored on the subscription.
	Reference string

	ChargedAt time.Time
}

// Gateway charges users for subscriptions. Implementations must be safe for
// concurrent use.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// MOCK GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// MockGateway approves every charge and mints a fresh reference. It stands in
// for the processor in development and in tests.
type MockGateway struct {
	log *logger.Logger
}

// NewMockGateway creates a new MockGateway.
func NewMockGateway(log *logger.Logger) *MockGateway {
	if log == nil {
		log = logger.Default()
	}
	return &MockGateway{log: log.With(logger.Component("payment.mock"))}
}

// Charge approves the charge unconditionally.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ChargeResult{
		Reference: "pay_" + uuid.NewString(),
		ChargedAt: time.Now().UTC(),
	}

	g.log.Info("charge approved",
		logger.UserID(req.UserID),
		logger.PlanID(req.PlanID),
		logger.Int64("amount_cents", req.AmountCents),
		logger.String("reference", result.Reference),
	)

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESILIENT GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// ResilientGateway wraps another Gateway with retries and a circuit breaker.
// Transient processor failures are retried with backoff; a run of failures
// opens the circuit and subsequent charges fail fast with
// shared.ErrPaymentUnavailable.
type ResilientGateway struct {
	inner   Gateway
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewResilientGateway creates a ResilientGateway around inner.
func NewResilientGateway(inner Gateway, log *logger.Logger) *ResilientGateway {
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("payment.gateway"))

	breaker := circuitbreaker.PaymentBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})

	return &ResilientGateway{
		inner:   inner,
		retrier: retry.PaymentRetrier(),
		breaker: breaker,
		log:     log,
	}
}

// Charge executes the charge through the breaker and retrier.
func (g *ResilientGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	var result *ChargeResult

	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.retrier.Do(ctx, func(ctx context.Context) error {
			r, err := g.inner.Charge(ctx, req)
			if err != nil {
				// Context errors are final, everything else may be transient.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return retry.Permanent(err)
				}
				return retry.Retryable(err)
			}
			result = r
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, shared.WrapError("payment", "Charge", shared.ErrServiceUnavailable,
				"payment gateway unavailable", err)
		}
		return nil, shared.WrapError("payment", "Charge", shared.ErrExternalService,
			fmt.Sprintf("charge failed for user %d", req.UserID), err)
	}

	return result, nil
}
