package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenRate is the number of tokens one unit of currency buys.
// Rates are append-only; the latest row is the current value.
type TokenRate struct {
	ID        int64           `db:"id" json:"id"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	SetBy     *int64          `db:"set_by" json:"setBy,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// ToTokens returns the whole tokens a currency amount buys, rounded down
func (r TokenRate) ToTokens(amount decimal.Decimal) int64 {
	return amount.Mul(r.Rate).Floor().IntPart()
}

// CurrencyCost is what a purchase of the given tokens costs, rounded up to cents
func (r TokenRate) CurrencyCost(tokens int64) decimal.Decimal {
	return decimal.NewFromInt(tokens).Div(r.Rate).RoundCeil(2)
}

// ToCurrency is what redeeming the given tokens pays out, rounded down to cents
func (r TokenRate) ToCurrency(tokens int64) decimal.Decimal {
	return decimal.NewFromInt(tokens).Div(r.Rate).RoundFloor(2)
}

// IsCurrencyAmount reports whether the amount is positive with at most two decimal places
func IsCurrencyAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(2))
}
