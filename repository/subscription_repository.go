package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, user_id, plan, price, status, started_at, renews_at, cancelled_at, updated_at`

// SubscriptionRepository implements subscription data access
type SubscriptionRepository struct {
	q Queryable
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{q: db.Pool}
}

// NewSubscriptionRepositoryScoped creates a new subscription repository bound to a transaction
func NewSubscriptionRepositoryScoped(tx Queryable) *SubscriptionRepository {
	return &SubscriptionRepository{q: tx}
}

// Create starts a subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan, price, status, started_at, renews_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at
	`

	err := r.q.QueryRow(ctx, query, sub.UserID, sub.Plan, sub.Price, sub.Status, sub.StartedAt, sub.RenewsAt).
		Scan(&sub.ID, &sub.UpdatedAt)
	if isUniqueViolation(err, "idx_subscriptions_current_user") {
		return entities.ErrActiveSubscription
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription for user %d: %w", sub.UserID, err)
	}
	return nil
}

// GetCurrentByUser returns the active or cancelled-but-paid subscription
func (r *SubscriptionRepository) GetCurrentByUser(ctx context.Context, userID int64) (*entities.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status IN ('active', 'cancelled')
	`

	sub, err := scanSubscription(r.q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription for user %d: %w", userID, err)
	}
	return sub, nil
}

// Update persists status and renewal dates
func (r *SubscriptionRepository) Update(ctx context.Context, sub *entities.Subscription) error {
	query := `
		UPDATE subscriptions
		SET status = $2,
			renews_at = $3,
			cancelled_at = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, sub.ID, sub.Status, sub.RenewsAt, sub.CancelledAt).Scan(&sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update subscription %d: %w", sub.ID, err)
	}
	return nil
}

// ListDue returns non-expired subscriptions whose renewal time has passed
func (r *SubscriptionRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status IN ('active', 'cancelled') AND renews_at <= $1
		ORDER BY renews_at, id
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*entities.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountActive counts subscriptions that renew automatically
func (r *SubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = 'active'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return count, nil
}

func scanSubscription(row pgx.Row) (*entities.Subscription, error) {
	var sub entities.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Plan,
		&sub.Price,
		&sub.Status,
		&sub.StartedAt,
		&sub.RenewsAt,
		&sub.CancelledAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
