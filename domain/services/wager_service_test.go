package services

import (
	"context"
	"errors"
	"testing"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWagerServiceUnderTest(mocks *TestMocks) *wagerService {
	return NewWagerService(mocks.WagerRepo, mocks.WalletRepo, mocks.GameRepo, mocks.TransactionRepo, mocks.ComplianceRepo, mocks.EventPublisher).(*wagerService)
}

func acceptedWager() *entities.Wager {
	return &entities.Wager{
		ID:         TestWagerID,
		UserID:     TestUser1ID,
		OpponentID: TestUser2ID,
		GameID:     TestGameID,
		Amount:     500,
		Status:     entities.WagerStateAccepted,
	}
}

func TestWagerService_CreateWager(t *testing.T) {
	t.Parallel()

	t.Run("creates pending wager", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectSettings(defaultSettings())
		mocks.GameRepo.On("GetByID", ctx, TestGameID).Return(&entities.Game{ID: TestGameID, Name: "Chess", Status: entities.GameStatusActive}, nil)
		helper.ExpectWallet(TestUser2ID, newWallet(TestUser2ID, "0", 0))
		helper.ExpectLockedWallet(TestUser1ID, newWallet(TestUser1ID, "0", 1000))
		mocks.WagerRepo.On("Create", ctx, mock.MatchedBy(func(w *entities.Wager) bool {
			return w.UserID == TestUser1ID && w.OpponentID == TestUser2ID && w.Amount == 400 &&
				w.Status == entities.WagerStatePending && w.Terms == "best of three"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Wager).ID = TestWagerID
		}).Return(nil)
		mocks.GameRepo.On("IncrementPopularity", ctx, TestGameID).Return(nil)
		helper.ExpectEventPublish(events.EventTypeWagerCreated)

		wager, err := service.CreateWager(ctx, TestUser1ID, TestUser2ID, TestGameID, 400, "  best of three ")
		require.NoError(t, err)
		assert.Equal(t, TestWagerID, wager.ID)
		assert.Equal(t, entities.WagerStatePending, wager.Status)
		mocks.AssertAllExpectations(t)
	})

	t.Run("rejects wager against yourself", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		service := newWagerServiceUnderTest(mocks)

		_, err := service.CreateWager(context.Background(), TestUser1ID, TestUser1ID, TestGameID, 100, "")
		assert.ErrorIs(t, err, entities.ErrSelfWager)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		service := newWagerServiceUnderTest(mocks)

		_, err := service.CreateWager(context.Background(), TestUser1ID, TestUser2ID, TestGameID, 0, "")
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("rejects when wagering is disabled", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		settings := defaultSettings()
		settings.WageringEnabled = false
		helper.ExpectSettings(settings)

		_, err := service.CreateWager(context.Background(), TestUser1ID, TestUser2ID, TestGameID, 100, "")
		assert.ErrorIs(t, err, entities.ErrWageringDisabled)
		mocks.AssertAllExpectations(t)
	})

	t.Run("counts staked tokens against the creator", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		wallet := newWallet(TestUser1ID, "0", 1000)
		wallet.AvailableTokens = 300 // 700 held by open wagers

		helper.ExpectSettings(defaultSettings())
		mocks.GameRepo.On("GetByID", ctx, TestGameID).Return(&entities.Game{ID: TestGameID, Status: entities.GameStatusActive}, nil)
		helper.ExpectWallet(TestUser2ID, newWallet(TestUser2ID, "0", 0))
		helper.ExpectLockedWallet(TestUser1ID, wallet)

		_, err := service.CreateWager(ctx, TestUser1ID, TestUser2ID, TestGameID, 400, "")
		assert.ErrorIs(t, err, entities.ErrInsufficientTokens)
		mocks.WagerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown game", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectSettings(defaultSettings())
		mocks.GameRepo.On("GetByID", ctx, TestGameID).Return(nil, nil)

		_, err := service.CreateWager(ctx, TestUser1ID, TestUser2ID, TestGameID, 100, "")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestWagerService_AcceptWager(t *testing.T) {
	t.Parallel()

	pending := func() *entities.Wager {
		w := acceptedWager()
		w.Status = entities.WagerStatePending
		return w
	}

	t.Run("opponent accepts", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())
		helper.ExpectLockedWallet(TestUser2ID, newWallet(TestUser2ID, "0", 500))
		mocks.WagerRepo.On("Update", ctx, mock.MatchedBy(func(w *entities.Wager) bool {
			return w.Status == entities.WagerStateAccepted && w.AcceptedAt != nil
		})).Return(nil)
		mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
			change, ok := e.(events.WagerStateChangeEvent)
			return ok && change.OldState == entities.WagerStatePending && change.NewState == entities.WagerStateAccepted
		})).Return(nil)

		wager, err := service.AcceptWager(ctx, TestWagerID, TestUser2ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WagerStateAccepted, wager.Status)
		mocks.AssertAllExpectations(t)
	})

	t.Run("creator cannot accept own wager", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())

		_, err := service.AcceptWager(context.Background(), TestWagerID, TestUser1ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())

		_, err := service.AcceptWager(context.Background(), TestWagerID, TestUser3ID)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("opponent short of tokens", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())
		helper.ExpectLockedWallet(TestUser2ID, newWallet(TestUser2ID, "0", 499))

		_, err := service.AcceptWager(context.Background(), TestWagerID, TestUser2ID)
		assert.ErrorIs(t, err, entities.ErrInsufficientTokens)
		mocks.WagerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("already accepted", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(acceptedWager())

		_, err := service.AcceptWager(context.Background(), TestWagerID, TestUser2ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})
}

func TestWagerService_CompleteWager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reporterID int64
		winnerID   int64
		loserID    int64
	}{
		{name: "creator reports own win", reporterID: TestUser1ID, winnerID: TestUser1ID, loserID: TestUser2ID},
		{name: "opponent reports creator win", reporterID: TestUser2ID, winnerID: TestUser1ID, loserID: TestUser2ID},
		{name: "creator reports opponent win", reporterID: TestUser1ID, winnerID: TestUser2ID, loserID: TestUser1ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			mocks := NewTestMocks()
			helper := NewMockHelper(mocks)
			service := newWagerServiceUnderTest(mocks)

			helper.ExpectLockedWager(acceptedWager())
			mocks.WalletRepo.On("LockWallets", ctx, []int64{TestUser1ID, TestUser2ID}).Return(nil)
			mocks.WalletRepo.On("DeductTokens", ctx, tt.loserID, int64(500)).Return(nil)
			mocks.WalletRepo.On("AddTokens", ctx, tt.winnerID, int64(500)).Return(nil)
			mocks.WagerRepo.On("Update", ctx, mock.MatchedBy(func(w *entities.Wager) bool {
				return w.Status == entities.WagerStateCompleted && *w.WinnerID == tt.winnerID && w.CompletedAt != nil
			})).Return(nil)
			mocks.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
				return tx.UserID == tt.winnerID && tx.Type == entities.TransactionTypeWagerWin && tx.TokenAmount == 500 && *tx.RelatedID == TestWagerID
			})).Return(nil).Once()
			mocks.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
				return tx.UserID == tt.loserID && tx.Type == entities.TransactionTypeWagerLoss && tx.TokenAmount == -500
			})).Return(nil).Once()
			helper.ExpectEventPublish(events.EventTypeBalanceChange)
			helper.ExpectEventPublish(events.EventTypeWagerCompleted)

			wager, err := service.CompleteWager(ctx, TestWagerID, tt.reporterID, tt.winnerID)
			require.NoError(t, err)
			assert.Equal(t, entities.WagerStateCompleted, wager.Status)
			assert.Equal(t, tt.winnerID, *wager.WinnerID)
			mocks.AssertAllExpectations(t)
		})
	}

	t.Run("pending wager cannot be completed", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		w := acceptedWager()
		w.Status = entities.WagerStatePending
		helper.ExpectLockedWager(w)

		_, err := service.CompleteWager(context.Background(), TestWagerID, TestUser1ID, TestUser1ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("completed wager cannot be completed twice", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		w := acceptedWager()
		w.Status = entities.WagerStateCompleted
		helper.ExpectLockedWager(w)

		_, err := service.CompleteWager(context.Background(), TestWagerID, TestUser2ID, TestUser2ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
		mocks.WalletRepo.AssertNotCalled(t, "AddTokens", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("winner must be a participant", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(acceptedWager())

		_, err := service.CompleteWager(context.Background(), TestWagerID, TestUser1ID, TestUser3ID)
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})

	t.Run("missing wager", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		service := newWagerServiceUnderTest(mocks)

		mocks.WagerRepo.On("GetByIDForUpdate", mock.Anything, int64(999)).Return(nil, nil)

		_, err := service.CompleteWager(context.Background(), 999, TestUser1ID, TestUser1ID)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestWagerService_CancelAndDecline(t *testing.T) {
	t.Parallel()

	pending := func() *entities.Wager {
		w := acceptedWager()
		w.Status = entities.WagerStatePending
		return w
	}

	t.Run("creator cancels", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())
		mocks.WagerRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		helper.ExpectEventPublish(events.EventTypeWagerStateChange)

		wager, err := service.CancelWager(context.Background(), TestWagerID, TestUser1ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WagerStateCancelled, wager.Status)
	})

	t.Run("opponent cannot cancel", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())

		_, err := service.CancelWager(context.Background(), TestWagerID, TestUser2ID)
		assert.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("opponent declines", func(t *testing.T) {
		t.Parallel()
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)
		service := newWagerServiceUnderTest(mocks)

		helper.ExpectLockedWager(pending())
		mocks.WagerRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		helper.ExpectEventPublish(events.EventTypeWagerStateChange)

		wager, err := service.DeclineWager(context.Background(), TestWagerID, TestUser2ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WagerStateDeclined, wager.Status)
	})
}

func TestWagerService_GetWager_HidesFromOutsiders(t *testing.T) {
	t.Parallel()
	mocks := NewTestMocks()
	service := newWagerServiceUnderTest(mocks)

	mocks.WagerRepo.On("GetByID", mock.Anything, TestWagerID).Return(acceptedWager(), nil)

	_, err := service.GetWager(context.Background(), TestWagerID, TestUser3ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	wager, err := service.GetWager(context.Background(), TestWagerID, TestUser2ID)
	require.NoError(t, err)
	assert.Equal(t, TestWagerID, wager.ID)
}

func TestWagerService_CompleteWager_LocksBothWalletsFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWagerServiceUnderTest(mocks)

	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}

	helper.ExpectLockedWager(acceptedWager())
	mocks.WalletRepo.On("LockWallets", ctx, []int64{TestUser1ID, TestUser2ID}).Run(record("lock")).Return(nil)
	mocks.WalletRepo.On("DeductTokens", ctx, TestUser1ID, int64(500)).Run(record("deduct")).Return(nil)
	mocks.WalletRepo.On("AddTokens", ctx, TestUser2ID, int64(500)).Run(record("add")).Return(nil)
	mocks.WagerRepo.On("Update", ctx, mock.Anything).Return(nil)
	mocks.TransactionRepo.On("Create", ctx, mock.Anything).Return(nil)
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublish(events.EventTypeWagerCompleted)

	_, err := service.CompleteWager(ctx, TestWagerID, TestUser2ID, TestUser2ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "deduct", "add"}, calls)
}

// Not parallel: the hook sits on the global logger
func TestWagerService_CompleteWager_LogsPublishFailure(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	service := newWagerServiceUnderTest(mocks)

	helper.ExpectLockedWager(acceptedWager())
	mocks.WalletRepo.On("LockWallets", ctx, []int64{TestUser1ID, TestUser2ID}).Return(nil)
	mocks.WalletRepo.On("DeductTokens", ctx, TestUser1ID, int64(500)).Return(nil)
	mocks.WalletRepo.On("AddTokens", ctx, TestUser2ID, int64(500)).Return(nil)
	mocks.WagerRepo.On("Update", ctx, mock.Anything).Return(nil)
	mocks.TransactionRepo.On("Create", ctx, mock.Anything).Return(nil)
	helper.ExpectEventPublish(events.EventTypeBalanceChange)
	helper.ExpectEventPublishFailure(events.EventTypeWagerCompleted, errors.New("nats: connection closed"))

	wager, err := service.CompleteWager(ctx, TestWagerID, TestUser2ID, TestUser2ID)
	require.NoError(t, err, "settlement stands when the event cannot be published")
	assert.Equal(t, entities.WagerStateCompleted, wager.Status)

	var logged *log.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Failed to publish wager completed event" {
			logged = entry
		}
	}
	require.NotNil(t, logged, "publish failure was not logged")
	assert.Equal(t, log.ErrorLevel, logged.Level)
	assert.Equal(t, events.EventTypeWagerCompleted, logged.Data["event_type"])
	assert.EqualError(t, logged.Data[log.ErrorKey].(error), "nats: connection closed")
	mocks.AssertAllExpectations(t)
}
