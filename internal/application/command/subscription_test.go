package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/internal/infrastructure/payment"
	"github.com/learnhub/learning-platform/pkg/logger"
)

func testPlans() *fakePlanRepo {
	return &fakePlanRepo{plans: map[int64]*subscription.Plan{
		1: {ID: 1, Name: "basic", PriceMonthly: 990, IsActive: true},
		2: {ID: 2, Name: "pro", PriceMonthly: 1990, IsActive: true},
		3: {ID: 3, Name: "legacy", PriceMonthly: 490, IsActive: false},
	}}
}

func testGateway() payment.Gateway {
	return payment.NewMockGateway(logger.Nop())
}

func TestSubscribe_OpensThirtyDayWindow(t *testing.T) {
	subRepo := newFakeSubRepo()
	pub := &capturingPublisher{}
	h := NewSubscribeHandler(testPlans(), subRepo, testGateway(), pub)

	result, err := h.Handle(context.Background(), SubscribeCommand{UserID: 5, PlanID: 1})
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, result.Status)
	assert.False(t, result.Superseded)
	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, result.StartedAt.Add(subscription.EntitlementPeriod), *result.ExpiresAt)

	active, err := subRepo.GetActiveByUser(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, result.SubscriptionID, active.ID)
	assert.NotEmpty(t, active.ExternalRef)
	assert.Len(t, pub.byType(shared.EventSubscriptionCreated), 1)
}

func TestSubscribe_SupersedesExistingActive(t *testing.T) {
	subRepo := newFakeSubRepo()
	h := NewSubscribeHandler(testPlans(), subRepo, testGateway(), &capturingPublisher{})
	ctx := context.Background()

	first, err := h.Handle(ctx, SubscribeCommand{UserID: 5, PlanID: 1})
	require.NoError(t, err)

	second, err := h.Handle(ctx, SubscribeCommand{UserID: 5, PlanID: 2})
	require.NoError(t, err)
	assert.True(t, second.Superseded)
	assert.NotEqual(t, first.SubscriptionID, second.SubscriptionID)

	active, err := subRepo.GetActiveByUser(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.SubscriptionID, active.ID)
	assert.Equal(t, int64(2), active.PlanID)

	// Старая строка остаётся в истории со статусом cancelled.
	require.Len(t, subRepo.all, 2)
	for _, s := range subRepo.all {
		if s.ID == first.SubscriptionID {
			assert.Equal(t, subscription.StatusCancelled, s.Status)
		}
	}
}

func TestSubscribe_InactivePlanRejected(t *testing.T) {
	subRepo := newFakeSubRepo()
	h := NewSubscribeHandler(testPlans(), subRepo, testGateway(), &capturingPublisher{})

	_, err := h.Handle(context.Background(), SubscribeCommand{UserID: 5, PlanID: 3})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = h.Handle(context.Background(), SubscribeCommand{UserID: 5, PlanID: 42})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubscribe_ChargeFailureLeavesNoRow(t *testing.T) {
	subRepo := newFakeSubRepo()
	pub := &capturingPublisher{}
	gw := &failingGateway{err: shared.ErrPaymentFailed}
	h := NewSubscribeHandler(testPlans(), subRepo, gw, pub)

	_, err := h.Handle(context.Background(), SubscribeCommand{UserID: 5, PlanID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)

	active, err := subRepo.GetActiveByUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Empty(t, subRepo.all)
	assert.Empty(t, pub.events)
}

func TestCancelSubscription_PullsExpiryToNow(t *testing.T) {
	subRepo := newFakeSubRepo()
	subscribe := NewSubscribeHandler(testPlans(), subRepo, testGateway(), &capturingPublisher{})
	ctx := context.Background()

	_, err := subscribe.Handle(ctx, SubscribeCommand{UserID: 5, PlanID: 1})
	require.NoError(t, err)

	pub := &capturingPublisher{}
	h := NewCancelSubscriptionHandler(subRepo, pub)

	result, err := h.Handle(ctx, CancelSubscriptionCommand{UserID: 5})
	require.NoError(t, err)

	assert.Equal(t, StatusAcknowledged, result.Status)
	assert.True(t, result.Cancelled)
	require.NotNil(t, result.CancelledAt)
	require.NotNil(t, result.ExpiresAt)
	assert.False(t, result.ExpiresAt.After(time.Now().UTC()))
	assert.Len(t, pub.byType(shared.EventSubscriptionCancelled), 1)

	active, err := subRepo.GetActiveByUser(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCancelSubscription_NothingActiveIsNoOp(t *testing.T) {
	pub := &capturingPublisher{}
	h := NewCancelSubscriptionHandler(newFakeSubRepo(), pub)

	result, err := h.Handle(context.Background(), CancelSubscriptionCommand{UserID: 5})
	require.NoError(t, err)

	// Ответ всё равно подтверждает отмену.
	assert.Equal(t, StatusAcknowledged, result.Status)
	assert.False(t, result.Cancelled)
	assert.Empty(t, result.SubscriptionID)
	assert.Empty(t, pub.events)
}

func TestChangePlan_MutatesInPlace(t *testing.T) {
	subRepo := newFakeSubRepo()
	subscribe := NewSubscribeHandler(testPlans(), subRepo, testGateway(), &capturingPublisher{})
	ctx := context.Background()

	opened, err := subscribe.Handle(ctx, SubscribeCommand{UserID: 5, PlanID: 1})
	require.NoError(t, err)

	pub := &capturingPublisher{}
	h := NewChangePlanHandler(testPlans(), subRepo, testGateway(), pub)

	result, err := h.Handle(ctx, ChangePlanCommand{UserID: 5, PlanID: 2})
	require.NoError(t, err)

	// Та же строка, тот же период - меняется только план.
	assert.False(t, result.Created)
	assert.Equal(t, opened.SubscriptionID, result.SubscriptionID)
	assert.Equal(t, int64(2), result.PlanID)
	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, *opened.ExpiresAt, *result.ExpiresAt)

	assert.Len(t, pub.byType(shared.EventPlanChanged), 1)
	assert.Len(t, subRepo.all, 1)
}

func TestChangePlan_NothingActiveFallsBackToSubscribe(t *testing.T) {
	subRepo := newFakeSubRepo()
	pub := &capturingPublisher{}
	h := NewChangePlanHandler(testPlans(), subRepo, testGateway(), pub)

	result, err := h.Handle(context.Background(), ChangePlanCommand{UserID: 5, PlanID: 2})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.NotEmpty(t, result.SubscriptionID)
	require.NotNil(t, result.ExpiresAt)

	assert.Len(t, pub.byType(shared.EventSubscriptionCreated), 1)
	assert.Empty(t, pub.byType(shared.EventPlanChanged))
}

func TestChangePlan_InactivePlanRejected(t *testing.T) {
	h := NewChangePlanHandler(testPlans(), newFakeSubRepo(), testGateway(), &capturingPublisher{})

	_, err := h.Handle(context.Background(), ChangePlanCommand{UserID: 5, PlanID: 3})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
