package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ComplianceSettings are the platform-wide responsible gaming limits
type ComplianceSettings struct {
	MaxDepositAmount          decimal.Decimal `db:"max_deposit_amount" json:"maxDepositAmount"`
	DailyDepositLimit         decimal.Decimal `db:"daily_deposit_limit" json:"dailyDepositLimit"`
	MaxWithdrawalAmount       decimal.Decimal `db:"max_withdrawal_amount" json:"maxWithdrawalAmount"`
	WithdrawalReviewThreshold decimal.Decimal `db:"withdrawal_review_threshold" json:"withdrawalReviewThreshold"`
	MaxWagerAmount            int64           `db:"max_wager_amount" json:"maxWagerAmount"`
	WageringEnabled           bool            `db:"wagering_enabled" json:"wageringEnabled"`
	UpdatedBy                 *int64          `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt                 time.Time       `db:"updated_at" json:"updatedAt"`
}

// Validate checks that the limits are coherent
func (c *ComplianceSettings) Validate() error {
	if !c.MaxDepositAmount.IsPositive() || !c.DailyDepositLimit.IsPositive() || !c.MaxWithdrawalAmount.IsPositive() {
		return fmt.Errorf("%w: limits must be positive", ErrInvalidInput)
	}
	if c.DailyDepositLimit.LessThan(c.MaxDepositAmount) {
		return fmt.Errorf("%w: daily deposit limit is below the single deposit maximum", ErrInvalidInput)
	}
	if c.WithdrawalReviewThreshold.IsNegative() {
		return fmt.Errorf("%w: review threshold cannot be negative", ErrInvalidInput)
	}
	if c.MaxWagerAmount <= 0 {
		return fmt.Errorf("%w: max wager amount must be positive", ErrInvalidInput)
	}
	return nil
}

// CheckDeposit validates a deposit against the single and daily limits
func (c *ComplianceSettings) CheckDeposit(amount, depositedToday decimal.Decimal) error {
	if amount.GreaterThan(c.MaxDepositAmount) {
		return fmt.Errorf("%w: deposit exceeds maximum of %s", ErrLimitExceeded, c.MaxDepositAmount.StringFixed(2))
	}
	if depositedToday.Add(amount).GreaterThan(c.DailyDepositLimit) {
		return fmt.Errorf("%w: daily deposit limit of %s reached", ErrLimitExceeded, c.DailyDepositLimit.StringFixed(2))
	}
	return nil
}

// CheckWithdrawal validates a withdrawal against the single withdrawal limit
func (c *ComplianceSettings) CheckWithdrawal(amount decimal.Decimal) error {
	if amount.GreaterThan(c.MaxWithdrawalAmount) {
		return fmt.Errorf("%w: withdrawal exceeds maximum of %s", ErrLimitExceeded, c.MaxWithdrawalAmount.StringFixed(2))
	}
	return nil
}

// CheckWager validates a wager stake in tokens
func (c *ComplianceSettings) CheckWager(tokens int64) error {
	if !c.WageringEnabled {
		return ErrWageringDisabled
	}
	if tokens > c.MaxWagerAmount {
		return fmt.Errorf("%w: wager exceeds maximum of %d tokens", ErrLimitExceeded, c.MaxWagerAmount)
	}
	return nil
}

// RequiresReview reports whether a withdrawal must be approved by staff first
func (c *ComplianceSettings) RequiresReview(amount decimal.Decimal) bool {
	return amount.GreaterThan(c.WithdrawalReviewThreshold)
}

// ReviewStatus is the decision state of a compliance review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// ComplianceReview is a manual check of a flagged transaction
type ComplianceReview struct {
	ID            int64        `db:"id" json:"id"`
	UserID        int64        `db:"user_id" json:"userId"`
	TransactionID *int64       `db:"transaction_id" json:"transactionId,omitempty"`
	Reason        string       `db:"reason" json:"reason"`
	Status        ReviewStatus `db:"status" json:"status"`
	ReviewerID    *int64       `db:"reviewer_id" json:"reviewerId,omitempty"`
	Notes         string       `db:"notes" json:"notes"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	DecidedAt     *time.Time   `db:"decided_at" json:"decidedAt,omitempty"`
}

// IsPending reports whether the review still awaits a decision
func (r *ComplianceReview) IsPending() bool {
	return r.Status == ReviewStatusPending
}
