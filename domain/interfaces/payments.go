package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest asks a processor to collect money from the user
type ChargeRequest struct {
	Reference  uuid.UUID
	UserID     int64
	Amount     decimal.Decimal
	PayerEmail string
}

// PayoutRequest asks a processor to send money to the user
type PayoutRequest struct {
	Reference      uuid.UUID
	UserID         int64
	Amount         decimal.Decimal
	RecipientEmail string
}

// ProviderResult is the processor's acknowledgement
type ProviderResult struct {
	ProviderRef string `json:"providerRef"`
	Status      string `json:"status"`
}

// PaymentProvider wraps one external payment processor
type PaymentProvider interface {
	Name() string
	Deposit(ctx context.Context, req ChargeRequest) (*ProviderResult, error)
	Withdraw(ctx context.Context, req PayoutRequest) (*ProviderResult, error)
}

// PaymentProviderRegistry resolves processors by name
type PaymentProviderRegistry interface {
	// Get fails with ErrUnknownProvider for unregistered names
	Get(name string) (PaymentProvider, error)
	Names() []string
}
