package services

import (
	"context"
	"testing"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("charges the plan price", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := NewSubscriptionService(mocks.SubscriptionRepo, mocks.WalletRepo, mocks.TransactionRepo, mocks.EventPublisher)
		price := decimal.RequireFromString("19.99")

		mocks.SubscriptionRepo.On("GetCurrentByUser", ctx, TestUser1ID).Return(nil, nil)
		helper.ExpectLockedWallet(TestUser1ID, newWallet(TestUser1ID, "50", 0))
		mocks.WalletRepo.On("DeductBalance", ctx, TestUser1ID, mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(price) })).Return(nil)
		mocks.SubscriptionRepo.On("Create", ctx, mock.MatchedBy(func(s *entities.Subscription) bool {
			return s.Plan == entities.SubscriptionPlanPremium && s.Status == entities.SubscriptionStatusActive &&
				s.RenewsAt.Sub(s.StartedAt) == entities.SubscriptionPeriod
		})).Return(nil)
		mocks.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
			return tx.Type == entities.TransactionTypeSubscriptionCharge && tx.Amount.Equal(price.Neg())
		})).Return(nil)
		helper.ExpectEventPublish(events.EventTypeBalanceChange)
		helper.ExpectEventPublish(events.EventTypeSubscriptionChange)

		sub, err := service.Subscribe(ctx, TestUser1ID, entities.SubscriptionPlanPremium)
		require.NoError(t, err)
		assert.True(t, sub.Price.Equal(price))
		mocks.AssertAllExpectations(t)
	})

	t.Run("one usable subscription per user", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		service := NewSubscriptionService(mocks.SubscriptionRepo, mocks.WalletRepo, mocks.TransactionRepo, mocks.EventPublisher)

		mocks.SubscriptionRepo.On("GetCurrentByUser", mock.Anything, TestUser1ID).Return(&entities.Subscription{
			ID: 1, UserID: TestUser1ID, Status: entities.SubscriptionStatusCancelled, RenewsAt: time.Now().Add(time.Hour),
		}, nil)

		_, err := service.Subscribe(context.Background(), TestUser1ID, entities.SubscriptionPlanBasic)
		assert.ErrorIs(t, err, entities.ErrActiveSubscription)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := NewSubscriptionService(mocks.SubscriptionRepo, mocks.WalletRepo, mocks.TransactionRepo, mocks.EventPublisher)

		mocks.SubscriptionRepo.On("GetCurrentByUser", mock.Anything, TestUser1ID).Return(nil, nil)
		helper.ExpectLockedWallet(TestUser1ID, newWallet(TestUser1ID, "5", 0))

		_, err := service.Subscribe(context.Background(), TestUser1ID, entities.SubscriptionPlanBasic)
		assert.ErrorIs(t, err, entities.ErrInsufficientBalance)
		mocks.SubscriptionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSubscriptionService_RenewDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := NewSubscriptionService(mocks.SubscriptionRepo, mocks.WalletRepo, mocks.TransactionRepo, mocks.EventPublisher)
	now := time.Now()
	due := now.Add(-time.Minute)
	price := decimal.RequireFromString("9.99")

	renewable := &entities.Subscription{ID: 1, UserID: TestUser1ID, Plan: entities.SubscriptionPlanBasic, Price: price, Status: entities.SubscriptionStatusActive, RenewsAt: due}
	broke := &entities.Subscription{ID: 2, UserID: TestUser2ID, Plan: entities.SubscriptionPlanBasic, Price: price, Status: entities.SubscriptionStatusActive, RenewsAt: due}
	cancelled := &entities.Subscription{ID: 3, UserID: TestUser3ID, Plan: entities.SubscriptionPlanBasic, Price: price, Status: entities.SubscriptionStatusCancelled, RenewsAt: due}

	mocks.SubscriptionRepo.On("ListDue", ctx, now).Return([]*entities.Subscription{renewable, broke, cancelled}, nil)
	helper.ExpectLockedWallet(TestUser1ID, newWallet(TestUser1ID, "20", 0))
	helper.ExpectLockedWallet(TestUser2ID, newWallet(TestUser2ID, "1", 0))
	mocks.WalletRepo.On("DeductBalance", ctx, TestUser1ID, price).Return(nil)
	mocks.SubscriptionRepo.On("Update", ctx, mock.Anything).Return(nil)
	helper.ExpectTransaction(TestUser1ID, entities.TransactionTypeSubscriptionCharge)
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublish(events.EventTypeSubscriptionChange)

	summary, err := service.RenewDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Renewed)
	assert.Equal(t, 2, summary.Expired)
	assert.Equal(t, due.Add(entities.SubscriptionPeriod), renewable.RenewsAt)
	assert.Equal(t, entities.SubscriptionStatusExpired, broke.Status)
	assert.Equal(t, entities.SubscriptionStatusExpired, cancelled.Status)
	mocks.AssertAllExpectations(t)
}

func TestSubscriptionService_Cancel(t *testing.T) {
	t.Parallel()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := NewSubscriptionService(mocks.SubscriptionRepo, mocks.WalletRepo, mocks.TransactionRepo, mocks.EventPublisher)

	active := &entities.Subscription{ID: 1, UserID: TestUser1ID, Status: entities.SubscriptionStatusActive, RenewsAt: time.Now().Add(time.Hour)}
	mocks.SubscriptionRepo.On("GetCurrentByUser", mock.Anything, TestUser1ID).Return(active, nil)
	mocks.SubscriptionRepo.On("Update", mock.Anything, active).Return(nil)
	helper.ExpectEventPublish(events.EventTypeSubscriptionChange)

	sub, err := service.Cancel(context.Background(), TestUser1ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SubscriptionStatusCancelled, sub.Status)
	assert.True(t, sub.IsUsable(time.Now()))

	_, err = service.Cancel(context.Background(), TestUser1ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)
}
