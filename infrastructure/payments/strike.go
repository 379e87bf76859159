package payments

import (
	"context"
	"fmt"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/shopspring/decimal"
)

// StrikeProvider settles over Lightning invoices
type StrikeProvider struct {
	stubProvider
}

// NewStrikeProvider creates a Strike stub
func NewStrikeProvider(latency time.Duration) *StrikeProvider {
	return &StrikeProvider{stubProvider{name: ProviderStrike, prefix: "strike", latency: latency}}
}

func (p *StrikeProvider) checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: strike invoices must be positive", entities.ErrInvalidAmount)
	}
	return p.validateAmount(amount)
}

func (p *StrikeProvider) Deposit(ctx context.Context, req interfaces.ChargeRequest) (*interfaces.ProviderResult, error) {
	if err := p.checkAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "invoice", req.Reference, req.Amount)
}

func (p *StrikeProvider) Withdraw(ctx context.Context, req interfaces.PayoutRequest) (*interfaces.ProviderResult, error) {
	if err := p.checkAmount(req.Amount); err != nil {
		return nil, err
	}
	return p.roundTrip(ctx, "send", req.Reference, req.Amount)
}
