package testhelpers

import (
	"context"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int64, role entities.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) LockWallets(ctx context.Context, userIDs ...int64) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

func (m *MockWalletRepository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) AddTokens(ctx context.Context, userID int64, tokens int64) error {
	args := m.Called(ctx, userID, tokens)
	return args.Error(0)
}

func (m *MockWalletRepository) DeductTokens(ctx context.Context, userID int64, tokens int64) error {
	args := m.Called(ctx, userID, tokens)
	return args.Error(0)
}

func (m *MockWalletRepository) TotalTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *entities.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id int64) (*entities.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *MockGameRepository) List(ctx context.Context, status *entities.GameStatus) ([]*entities.Game, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

func (m *MockGameRepository) UpdateStatus(ctx context.Context, id int64, status entities.GameStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockGameRepository) IncrementPopularity(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameRepository) TopByPopularity(ctx context.Context, limit int) ([]*entities.Game, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

// MockTournamentRepository is a mock implementation of TournamentRepository
type MockTournamentRepository struct {
	mock.Mock
}

func (m *MockTournamentRepository) Create(ctx context.Context, tournament *entities.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetByID(ctx context.Context, id int64) (*entities.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) List(ctx context.Context, status *entities.TournamentStatus) ([]*entities.Tournament, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) Update(ctx context.Context, tournament *entities.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) AddParticipant(ctx context.Context, tournamentID, userID int64) error {
	args := m.Called(ctx, tournamentID, userID)
	return args.Error(0)
}

func (m *MockTournamentRepository) IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	args := m.Called(ctx, tournamentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTournamentRepository) GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TournamentParticipant), args.Error(1)
}

func (m *MockTournamentRepository) ListByParticipant(ctx context.Context, userID int64) ([]*entities.Tournament, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) ListDueForTransition(ctx context.Context, now time.Time) ([]*entities.Tournament, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) CountByStatus(ctx context.Context, status entities.TournamentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) Update(ctx context.Context, wager *entities.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) ListByUser(ctx context.Context, userID int64, activeOnly bool, limit int) ([]*entities.Wager, error) {
	args := m.Called(ctx, userID, activeOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wager), args.Error(1)
}

func (m *MockWagerRepository) CountByStatus(ctx context.Context, status entities.WagerState) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id int64, status entities.TransactionStatus, providerRef *string) error {
	args := m.Called(ctx, id, status, providerRef)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountSince(ctx context.Context, userID int64, txType entities.TransactionType, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, txType, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumCompletedAmount(ctx context.Context, txType entities.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, txType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTokenRateRepository is a mock implementation of TokenRateRepository
type MockTokenRateRepository struct {
	mock.Mock
}

func (m *MockTokenRateRepository) GetCurrent(ctx context.Context) (*entities.TokenRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenRate), args.Error(1)
}

func (m *MockTokenRateRepository) Create(ctx context.Context, rate *entities.TokenRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTokenRateRepository) List(ctx context.Context, limit int) ([]*entities.TokenRate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TokenRate), args.Error(1)
}

// MockRevokedTokenRepository is a mock implementation of RevokedTokenRepository
type MockRevokedTokenRepository struct {
	mock.Mock
}

func (m *MockRevokedTokenRepository) Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, userID, expiresAt)
	return args.Error(0)
}

func (m *MockRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevokedTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetCurrentByUser(ctx context.Context, userID int64) (*entities.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*entities.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockComplianceRepository is a mock implementation of ComplianceRepository
type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) GetSettings(ctx context.Context) (*entities.ComplianceSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ComplianceSettings), args.Error(1)
}

func (m *MockComplianceRepository) UpdateSettings(ctx context.Context, settings *entities.ComplianceSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockComplianceRepository) CreateReview(ctx context.Context, review *entities.ComplianceReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockComplianceRepository) GetReviewByID(ctx context.Context, id int64) (*entities.ComplianceReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ComplianceReview), args.Error(1)
}

func (m *MockComplianceRepository) GetReviewByIDForUpdate(ctx context.Context, id int64) (*entities.ComplianceReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ComplianceReview), args.Error(1)
}

func (m *MockComplianceRepository) UpdateReview(ctx context.Context, review *entities.ComplianceReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockComplianceRepository) ListReviews(ctx context.Context, status *entities.ReviewStatus, limit int) ([]*entities.ComplianceReview, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ComplianceReview), args.Error(1)
}

func (m *MockComplianceRepository) CountReviews(ctx context.Context, status entities.ReviewStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenRateCache is a mock implementation of TokenRateCache
type MockTokenRateCache struct {
	mock.Mock
}

func (m *MockTokenRateCache) Get(ctx context.Context) (*entities.TokenRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenRate), args.Error(1)
}

func (m *MockTokenRateCache) Set(ctx context.Context, rate *entities.TokenRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTokenRateCache) SetIfAbsent(ctx context.Context, rate *entities.TokenRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
