package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
)

// PayPalProvider identifies the counterparty by PayPal email
type PayPalProvider struct {
	stubProvider
}

// NewPayPalProvider creates a PayPal stub
func NewPayPalProvider(latency time.Duration) *PayPalProvider {
	return &PayPalProvider{stubProvider{name: ProviderPayPal, prefix: "PAYID", latency: latency}}
}

// Deposit captures an order paid by the payer email
func (p *PayPalProvider) Deposit(ctx context.Context, req interfaces.ChargeRequest) (*interfaces.ProviderResult, error) {
	if strings.TrimSpace(req.PayerEmail) == "" {
		return nil, fmt.Errorf("%w: paypal requires a payer email", entities.ErrInvalidInput)
	}
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "capture", req.Reference, req.Amount)
}

// Withdraw sends a payout to the recipient email
func (p *PayPalProvider) Withdraw(ctx context.Context, req interfaces.PayoutRequest) (*interfaces.ProviderResult, error) {
	if strings.TrimSpace(req.RecipientEmail) == "" {
		return nil, fmt.Errorf("%w: paypal requires a recipient email", entities.ErrInvalidInput)
	}
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "payout", req.Reference, req.Amount)
}
