package services

import (
	"testing"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestUser1ID      = int64(100)
	TestUser2ID      = int64(200)
	TestUser3ID      = int64(300)
	TestAdminID      = int64(1)
	TestGameID       = int64(10)
	TestWagerID      = int64(50)
	TestTournamentID = int64(70)
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	UserRepo         *testhelpers.MockUserRepository
	WalletRepo       *testhelpers.MockWalletRepository
	GameRepo         *testhelpers.MockGameRepository
	TournamentRepo   *testhelpers.MockTournamentRepository
	WagerRepo        *testhelpers.MockWagerRepository
	TransactionRepo  *testhelpers.MockTransactionRepository
	TokenRateRepo    *testhelpers.MockTokenRateRepository
	RevokedTokenRepo *testhelpers.MockRevokedTokenRepository
	SubscriptionRepo *testhelpers.MockSubscriptionRepository
	NotificationRepo *testhelpers.MockNotificationRepository
	ComplianceRepo   *testhelpers.MockComplianceRepository
	TokenRateCache   *testhelpers.MockTokenRateCache
	EventPublisher   *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:         &testhelpers.MockUserRepository{},
		WalletRepo:       &testhelpers.MockWalletRepository{},
		GameRepo:         &testhelpers.MockGameRepository{},
		TournamentRepo:   &testhelpers.MockTournamentRepository{},
		WagerRepo:        &testhelpers.MockWagerRepository{},
		TransactionRepo:  &testhelpers.MockTransactionRepository{},
		TokenRateRepo:    &testhelpers.MockTokenRateRepository{},
		RevokedTokenRepo: &testhelpers.MockRevokedTokenRepository{},
		SubscriptionRepo: &testhelpers.MockSubscriptionRepository{},
		NotificationRepo: &testhelpers.MockNotificationRepository{},
		ComplianceRepo:   &testhelpers.MockComplianceRepository{},
		TokenRateCache:   &testhelpers.MockTokenRateCache{},
		EventPublisher:   &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.GameRepo.AssertExpectations(t)
	m.TournamentRepo.AssertExpectations(t)
	m.WagerRepo.AssertExpectations(t)
	m.TransactionRepo.AssertExpectations(t)
	m.TokenRateRepo.AssertExpectations(t)
	m.RevokedTokenRepo.AssertExpectations(t)
	m.SubscriptionRepo.AssertExpectations(t)
	m.NotificationRepo.AssertExpectations(t)
	m.ComplianceRepo.AssertExpectations(t)
	m.TokenRateCache.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{mocks: mocks}
}

// ExpectWallet sets up a plain wallet lookup
func (h *MockHelper) ExpectWallet(userID int64, wallet *entities.Wallet) {
	h.mocks.WalletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
}

// ExpectLockedWallet sets up a FOR UPDATE wallet lookup
func (h *MockHelper) ExpectLockedWallet(userID int64, wallet *entities.Wallet) {
	h.mocks.WalletRepo.On("GetByUserIDForUpdate", mock.Anything, userID).Return(wallet, nil)
}

// ExpectRate makes the token rate repository return the given rate
func (h *MockHelper) ExpectRate(rate string) {
	h.mocks.TokenRateRepo.On("GetCurrent", mock.Anything).Return(&entities.TokenRate{ID: 1, Rate: decimal.RequireFromString(rate)}, nil)
}

// ExpectLockedWager sets up a FOR UPDATE wager lookup
func (h *MockHelper) ExpectLockedWager(wager *entities.Wager) {
	h.mocks.WagerRepo.On("GetByIDForUpdate", mock.Anything, wager.ID).Return(wager, nil)
}

// ExpectLockedTournament sets up a FOR UPDATE tournament lookup
func (h *MockHelper) ExpectLockedTournament(tournament *entities.Tournament) {
	h.mocks.TournamentRepo.On("GetByIDForUpdate", mock.Anything, tournament.ID).Return(tournament, nil)
}

// ExpectSettings makes the compliance repository return the given settings
func (h *MockHelper) ExpectSettings(settings *entities.ComplianceSettings) {
	h.mocks.ComplianceRepo.On("GetSettings", mock.Anything).Return(settings, nil)
}

// ExpectTransaction expects a ledger entry of the given type for a user
func (h *MockHelper) ExpectTransaction(userID int64, txType entities.TransactionType) {
	h.mocks.TransactionRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.UserID == userID && tx.Type == txType
	})).Return(nil).Once()
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// ExpectEventPublishFailure makes publishing eventType fail with err
func (h *MockHelper) ExpectEventPublishFailure(eventType events.EventType, err error) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(err)
}

// newWallet builds a wallet with no open stakes
func newWallet(userID int64, balance string, tokens int64) *entities.Wallet {
	return &entities.Wallet{
		ID:              userID,
		UserID:          userID,
		Balance:         decimal.RequireFromString(balance),
		TokenBalance:    tokens,
		AvailableTokens: tokens,
	}
}

// defaultSettings mirrors the seeded compliance row
func defaultSettings() *entities.ComplianceSettings {
	return &entities.ComplianceSettings{
		MaxDepositAmount:          decimal.NewFromInt(10000),
		DailyDepositLimit:         decimal.NewFromInt(25000),
		MaxWithdrawalAmount:       decimal.NewFromInt(10000),
		WithdrawalReviewThreshold: decimal.NewFromInt(1000),
		MaxWagerAmount:            100000,
		WageringEnabled:           true,
	}
}
