package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPeriod is the billing cycle of every plan
const SubscriptionPeriod = 30 * 24 * time.Hour

// SubscriptionPlan names a paid plan
type SubscriptionPlan string

const (
	SubscriptionPlanBasic   SubscriptionPlan = "basic"
	SubscriptionPlanPremium SubscriptionPlan = "premium"
)

// IsValid reports whether the plan is known
func (p SubscriptionPlan) IsValid() bool {
	return p == SubscriptionPlanBasic || p == SubscriptionPlanPremium
}

// SubscriptionStatus is the billing state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription is a recurring plan charged against the wallet balance
type Subscription struct {
	ID          int64              `db:"id" json:"id"`
	UserID      int64              `db:"user_id" json:"userId"`
	Plan        SubscriptionPlan   `db:"plan" json:"plan"`
	Price       decimal.Decimal    `db:"price" json:"price"`
	Status      SubscriptionStatus `db:"status" json:"status"`
	StartedAt   time.Time          `db:"started_at" json:"startedAt"`
	RenewsAt    time.Time          `db:"renews_at" json:"renewsAt"`
	CancelledAt *time.Time         `db:"cancelled_at" json:"cancelledAt,omitempty"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updatedAt"`
}

// IsUsable reports whether the plan's benefits apply at the given time.
// A cancelled subscription stays usable until the end of the paid period.
func (s *Subscription) IsUsable(now time.Time) bool {
	switch s.Status {
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusCancelled:
		return now.Before(s.RenewsAt)
	}
	return false
}

// IsDue reports whether the subscription needs a renewal decision
func (s *Subscription) IsDue(now time.Time) bool {
	return s.Status != SubscriptionStatusExpired && !now.Before(s.RenewsAt)
}
