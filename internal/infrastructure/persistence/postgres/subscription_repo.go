package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PlanRepository implements subscription.PlanRepository for PostgreSQL.
type PlanRepository struct {
	conn *Connection
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(conn *Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

// GetByID returns a plan by ID or shared.ErrPlanNotFound.
func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	query := `
		SELECT id, name, description, price_monthly, price_yearly,
			   is_active, created_at, updated_at
		FROM subscription_plans
		WHERE id = $1
	`

	p := &subscription.Plan{}
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceMonthly,
		&p.PriceYearly,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return p, nil
}

// ListActive returns all active plans ordered by monthly price.
func (r *PlanRepository) ListActive(ctx context.Context) ([]subscription.Plan, error) {
	query := `
		SELECT id, name, description, price_monthly, price_yearly,
			   is_active, created_at, updated_at
		FROM subscription_plans
		WHERE is_active = TRUE
		ORDER BY price_monthly, id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []subscription.Plan
	for rows.Next() {
		var p subscription.Plan
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.PriceMonthly,
			&p.PriceYearly,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SubscriptionRepository implements subscription.Repository for PostgreSQL.
type SubscriptionRepository struct {
	conn *Connection
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(conn *Connection) *SubscriptionRepository {
	return &SubscriptionRepository{conn: conn}
}

// GetActiveByUser returns the user's active subscription row, or nil if
// the user has none.
func (r *SubscriptionRepository) GetActiveByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, expires_at,
			   cancelled_at, external_ref, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
	`

	s := &subscription.Subscription{}
	err := r.conn.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&s.Status,
		&s.StartedAt,
		&s.ExpiresAt,
		&s.CancelledAt,
		&s.ExternalRef,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return s, nil
}

// CreateSuperseding cancels the user's current active row (if any) and
// inserts the new one in a single transaction. The partial unique index
// on (user_id) WHERE status='active' turns a lost race between two
// concurrent inserts into shared.ErrConflict instead of a second active
// row.
func (r *SubscriptionRepository) CreateSuperseding(ctx context.Context, sub *subscription.Subscription) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		supersedeQuery := `
			UPDATE subscriptions
			SET status = 'cancelled',
				cancelled_at = $2,
				updated_at = NOW()
			WHERE user_id = $1 AND status = 'active'
		`

		if _, err := tx.Exec(ctx, supersedeQuery, sub.UserID, sub.CreatedAt); err != nil {
			return fmt.Errorf("failed to supersede subscription: %w", err)
		}

		insertQuery := `
			INSERT INTO subscriptions (
				id, user_id, plan_id, status, started_at, expires_at,
				cancelled_at, external_ref, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := tx.Exec(ctx, insertQuery,
			sub.ID,
			sub.UserID,
			sub.PlanID,
			sub.Status,
			sub.StartedAt,
			sub.ExpiresAt,
			sub.CancelledAt,
			sub.ExternalRef,
			sub.CreatedAt,
			sub.UpdatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrSubscriptionExists
			}
			return fmt.Errorf("failed to insert subscription: %w", err)
		}

		return nil
	})
}

// Update persists an in-place mutation of an existing row (Cancel,
// SwitchPlan).
func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_id = $2,
			status = $3,
			expires_at = $4,
			cancelled_at = $5,
			updated_at = $6
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		sub.ID,
		sub.PlanID,
		sub.Status,
		sub.ExpiresAt,
		sub.CancelledAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrSubscriptionNotFound
	}

	return nil
}
