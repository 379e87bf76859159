package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's currency balance and token balance
type Wallet struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	Balance         decimal.Decimal `db:"balance" json:"balance"`
	TokenBalance    int64           `db:"token_balance" json:"tokenBalance"`
	AvailableTokens int64           `db:"-" json:"availableTokens"` // Calculated: token balance minus tokens staked in open wagers
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// CanAffordTokens checks the available (unstaked) token balance
func (w *Wallet) CanAffordTokens(tokens int64) bool {
	return tokens > 0 && w.AvailableTokens >= tokens
}

// CanAffordCurrency checks the currency balance
func (w *Wallet) CanAffordCurrency(amount decimal.Decimal) bool {
	return amount.IsPositive() && w.Balance.GreaterThanOrEqual(amount)
}

// StakedTokens returns the tokens currently held by open wagers
func (w *Wallet) StakedTokens() int64 {
	return w.TokenBalance - w.AvailableTokens
}
