package payments

import (
	"context"
	"fmt"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const statusSucceeded = "succeeded"

// stubProvider simulates a processor round trip; concrete providers add their own checks
type stubProvider struct {
	name    string
	prefix  string
	latency time.Duration
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) validateAmount(amount decimal.Decimal) error {
	if !entities.IsCurrencyAmount(amount) {
		return fmt.Errorf("%w: %s rejected amount %s", entities.ErrInvalidAmount, p.name, amount.String())
	}
	return nil
}

// roundTrip waits for the simulated processor and returns a fabricated reference
func (p *stubProvider) roundTrip(ctx context.Context, operation string, ref uuid.UUID, amount decimal.Decimal) (*interfaces.ProviderResult, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s %s cancelled: %w", p.name, operation, ctx.Err())
		case <-timer.C:
		}
	}

	result := &interfaces.ProviderResult{
		ProviderRef: fmt.Sprintf("%s_%s", p.prefix, uuid.NewString()),
		Status:      statusSucceeded,
	}

	log.WithFields(log.Fields{
		"provider":     p.name,
		"operation":    operation,
		"reference":    ref,
		"amount":       amount.StringFixed(2),
		"provider_ref": result.ProviderRef,
	}).Info("Payment provider call succeeded")

	return result, nil
}
