package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)

	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, int64(42), sub.UserID)
	assert.Equal(t, int64(3), sub.PlanID)
	assert.Equal(t, now, sub.StartedAt)
	require.NotNil(t, sub.ExpiresAt)
	assert.Equal(t, now.Add(30*24*time.Hour), *sub.ExpiresAt)
	assert.Nil(t, sub.CancelledAt)
	assert.True(t, sub.IsActive(now))
}

func TestSupersede(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)
	expires := *sub.ExpiresAt

	later := now.Add(time.Hour)
	sub.Supersede(later)

	assert.Equal(t, StatusCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)
	assert.Equal(t, later, *sub.CancelledAt)
	// Supersede leaves the paid window untouched.
	assert.Equal(t, expires, *sub.ExpiresAt)
	assert.False(t, sub.IsActive(later))
}

func TestCancel_PullsExpiryForward(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)

	cancelAt := now.Add(10 * 24 * time.Hour)
	sub.Cancel(cancelAt)

	assert.Equal(t, StatusCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)
	assert.Equal(t, cancelAt, *sub.CancelledAt)
	// Access ends immediately, not at the end of the paid period.
	require.NotNil(t, sub.ExpiresAt)
	assert.Equal(t, cancelAt, *sub.ExpiresAt)
}

func TestCancel_NilExpiry(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)
	sub.ExpiresAt = nil

	sub.Cancel(now)

	require.NotNil(t, sub.ExpiresAt)
	assert.Equal(t, now, *sub.ExpiresAt)
}

func TestCancel_PastExpiryUnchanged(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)
	past := now.Add(-time.Hour)
	sub.ExpiresAt = &past

	sub.Cancel(now)

	// An already-expired window is not moved forward.
	assert.Equal(t, past, *sub.ExpiresAt)
}

func TestSwitchPlan_InPlace(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)
	started := sub.StartedAt
	expires := *sub.ExpiresAt

	later := now.Add(5 * 24 * time.Hour)
	sub.SwitchPlan(9, later)

	assert.Equal(t, int64(9), sub.PlanID)
	assert.Equal(t, later, sub.UpdatedAt)
	// No new period: dates stay as they were.
	assert.Equal(t, started, sub.StartedAt)
	assert.Equal(t, expires, *sub.ExpiresAt)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, "sub-1", sub.ID)
}

func TestIsActive(t *testing.T) {
	sub := New("sub-1", "ref-1", 42, 3, now)

	assert.True(t, sub.IsActive(now))
	assert.True(t, sub.IsActive(now.Add(29*24*time.Hour)))
	assert.False(t, sub.IsActive(now.Add(31*24*time.Hour)))

	sub.ExpiresAt = nil
	assert.True(t, sub.IsActive(now), "nil expiry means open-ended access")

	sub.Status = StatusCancelled
	assert.False(t, sub.IsActive(now))
}

func TestPlanValidate(t *testing.T) {
	plan := Plan{ID: 1, Name: "Pro", PriceMonthly: 999, PriceYearly: 9990, IsActive: true}
	assert.NoError(t, plan.Validate())

	bad := plan
	bad.ID = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidPlanID)

	bad = plan
	bad.Name = ""
	assert.ErrorIs(t, bad.Validate(), ErrEmptyPlanName)

	bad = plan
	bad.PriceMonthly = -1
	assert.ErrorIs(t, bad.Validate(), ErrNegativePrice)
}
