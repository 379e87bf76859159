package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	registry := NewDefaultRegistry(0)

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "stripe", input: "stripe", expected: ProviderStripe},
		{name: "camel case cash app", input: "cashApp", expected: ProviderCashApp},
		{name: "upper case paypal", input: " PAYPAL ", expected: ProviderPayPal},
		{name: "strike", input: "strike", expected: ProviderStrike},
		{name: "unknown", input: "venmo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := registry.Get(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, entities.ErrUnknownProvider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, provider.Name())
		})
	}

	assert.Equal(t, []string{"cashapp", "paypal", "strike", "stripe"}, registry.Names())
}

func TestProviders_Deposit(t *testing.T) {
	ctx := context.Background()
	ten := decimal.RequireFromString("10.00")

	tests := []struct {
		name       string
		provider   interfaces.PaymentProvider
		req        interfaces.ChargeRequest
		wantPrefix string
		wantErr    error
	}{
		{name: "stripe charge", provider: NewStripeProvider(0), req: interfaces.ChargeRequest{Amount: ten}, wantPrefix: "ch_"},
		{name: "cash app payment", provider: NewCashAppProvider(0), req: interfaces.ChargeRequest{Amount: ten}, wantPrefix: "cash_"},
		{name: "paypal capture", provider: NewPayPalProvider(0), req: interfaces.ChargeRequest{Amount: ten, PayerEmail: "a@b.c"}, wantPrefix: "PAYID_"},
		{name: "paypal without email", provider: NewPayPalProvider(0), req: interfaces.ChargeRequest{Amount: ten}, wantErr: entities.ErrInvalidInput},
		{name: "strike negative", provider: NewStrikeProvider(0), req: interfaces.ChargeRequest{Amount: decimal.NewFromInt(-1)}, wantErr: entities.ErrInvalidAmount},
		{name: "fractional cents", provider: NewStripeProvider(0), req: interfaces.ChargeRequest{Amount: decimal.RequireFromString("1.005")}, wantErr: entities.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Reference = uuid.New()
			result, err := tt.provider.Deposit(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(result.ProviderRef, tt.wantPrefix), result.ProviderRef)
			assert.Equal(t, statusSucceeded, result.Status)
		})
	}
}

func TestProviders_WithdrawRespectsCancellation(t *testing.T) {
	provider := NewStrikeProvider(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Withdraw(ctx, interfaces.PayoutRequest{Reference: uuid.New(), Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayPal_WithdrawNeedsRecipient(t *testing.T) {
	_, err := NewPayPalProvider(0).Withdraw(context.Background(), interfaces.PayoutRequest{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}
