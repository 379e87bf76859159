package repository

import (
	"context"
	"errors"
	"fmt"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, user_id, transaction_id, reason, status, reviewer_id, notes, created_at, decided_at`

// ComplianceRepository stores platform limits and manual reviews
type ComplianceRepository struct {
	q Queryable
}

// NewComplianceRepository creates a new compliance repository
func NewComplianceRepository(db *database.DB) *ComplianceRepository {
	return &ComplianceRepository{q: db.Pool}
}

// NewComplianceRepositoryScoped creates a new compliance repository bound to a transaction
func NewComplianceRepositoryScoped(tx Queryable) *ComplianceRepository {
	return &ComplianceRepository{q: tx}
}

// GetSettings returns the single settings row
func (r *ComplianceRepository) GetSettings(ctx context.Context) (*entities.ComplianceSettings, error) {
	query := `
		SELECT max_deposit_amount, daily_deposit_limit, max_withdrawal_amount,
			withdrawal_review_threshold, max_wager_amount, wagering_enabled,
			updated_by, updated_at
		FROM compliance_settings
		WHERE id = 1
	`

	var s entities.ComplianceSettings
	err := r.q.QueryRow(ctx, query).Scan(
		&s.MaxDepositAmount,
		&s.DailyDepositLimit,
		&s.MaxWithdrawalAmount,
		&s.WithdrawalReviewThreshold,
		&s.MaxWagerAmount,
		&s.WageringEnabled,
		&s.UpdatedBy,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance settings: %w", err)
	}
	return &s, nil
}

// UpdateSettings replaces the settings row
func (r *ComplianceRepository) UpdateSettings(ctx context.Context, s *entities.ComplianceSettings) error {
	query := `
		INSERT INTO compliance_settings (
			id, max_deposit_amount, daily_deposit_limit, max_withdrawal_amount,
			withdrawal_review_threshold, max_wager_amount, wagering_enabled, updated_by
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			max_deposit_amount = EXCLUDED.max_deposit_amount,
			daily_deposit_limit = EXCLUDED.daily_deposit_limit,
			max_withdrawal_amount = EXCLUDED.max_withdrawal_amount,
			withdrawal_review_threshold = EXCLUDED.withdrawal_review_threshold,
			max_wager_amount = EXCLUDED.max_wager_amount,
			wagering_enabled = EXCLUDED.wagering_enabled,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		s.MaxDepositAmount,
		s.DailyDepositLimit,
		s.MaxWithdrawalAmount,
		s.WithdrawalReviewThreshold,
		s.MaxWagerAmount,
		s.WageringEnabled,
		s.UpdatedBy,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update compliance settings: %w", err)
	}
	return nil
}

// CreateReview opens a manual review
func (r *ComplianceRepository) CreateReview(ctx context.Context, review *entities.ComplianceReview) error {
	query := `
		INSERT INTO compliance_reviews (user_id, transaction_id, reason, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, review.UserID, review.TransactionID, review.Reason, review.Status, review.Notes).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create compliance review: %w", err)
	}
	return nil
}

// GetReviewByID retrieves a review
func (r *ComplianceRepository) GetReviewByID(ctx context.Context, id int64) (*entities.ComplianceReview, error) {
	return r.getReview(ctx, `SELECT `+reviewColumns+` FROM compliance_reviews WHERE id = $1`, id)
}

// GetReviewByIDForUpdate retrieves a review and locks its row
func (r *ComplianceRepository) GetReviewByIDForUpdate(ctx context.Context, id int64) (*entities.ComplianceReview, error) {
	return r.getReview(ctx, `SELECT `+reviewColumns+` FROM compliance_reviews WHERE id = $1 FOR UPDATE`, id)
}

func (r *ComplianceRepository) getReview(ctx context.Context, query string, id int64) (*entities.ComplianceReview, error) {
	review, err := scanReview(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance review %d: %w", id, err)
	}
	return review, nil
}

// UpdateReview records a decision
func (r *ComplianceRepository) UpdateReview(ctx context.Context, review *entities.ComplianceReview) error {
	query := `
		UPDATE compliance_reviews
		SET status = $2, reviewer_id = $3, notes = $4, decided_at = $5
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, review.ID, review.Status, review.ReviewerID, review.Notes, review.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to update compliance review %d: %w", review.ID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// ListReviews returns reviews oldest first so the queue is worked in order
func (r *ComplianceRepository) ListReviews(ctx context.Context, status *entities.ReviewStatus, limit int) ([]*entities.ComplianceReview, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM compliance_reviews
		WHERE ($1::TEXT IS NULL OR status = $1)
		ORDER BY created_at, id
		LIMIT $2
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.q.Query(ctx, query, statusArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*entities.ComplianceReview
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// CountReviews counts reviews in one status
func (r *ComplianceRepository) CountReviews(ctx context.Context, status entities.ReviewStatus) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM compliance_reviews WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s reviews: %w", status, err)
	}
	return count, nil
}

func scanReview(row pgx.Row) (*entities.ComplianceReview, error) {
	var review entities.ComplianceReview
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.TransactionID,
		&review.Reason,
		&review.Status,
		&review.ReviewerID,
		&review.Notes,
		&review.CreatedAt,
		&review.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
