package payments

import (
	"context"
	"time"

	"wagerhub/domain/interfaces"
)

// CashAppProvider routes payments through Cash App
type CashAppProvider struct {
	stubProvider
}

// NewCashAppProvider creates a Cash App stub
func NewCashAppProvider(latency time.Duration) *CashAppProvider {
	return &CashAppProvider{stubProvider{name: ProviderCashApp, prefix: "cash", latency: latency}}
}

func (p *CashAppProvider) Deposit(ctx context.Context, req interfaces.ChargeRequest) (*interfaces.ProviderResult, error) {
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "payment", req.Reference, req.Amount)
}

func (p *CashAppProvider) Withdraw(ctx context.Context, req interfaces.PayoutRequest) (*interfaces.ProviderResult, error) {
	if err := p.validateAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "transfer", req.Reference, req.Amount)
}
