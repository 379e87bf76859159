package payments

import (
	"context"
	"time"

	"wagerhub/domain/interfaces"
)

// StripeProvider is the card processor
type StripeProvider struct {
	stubProvider
}

// NewStripeProvider creates a Stripe card processor stub
func NewStripeProvider(latency time.Duration) *StripeProvider {
	return &StripeProvider{stubProvider{name: ProviderStripe, prefix: "ch", latency: latency}}
}

// Deposit charges the user's card
func (p *StripeProvider) Deposit(ctx context.Context, req interfaces.ChargeRequest) (*interfaces.ProviderResult, error) {
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "charge", req.Reference, req.Amount)
}

// Withdraw pays out to the user's card
func (p *StripeProvider) Withdraw(ctx context.Context, req interfaces.PayoutRequest) (*interfaces.ProviderResult, error) {
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "payout", req.Reference, req.Amount)
}
