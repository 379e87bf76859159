package interfaces

import (
	"context"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"

	"github.com/shopspring/decimal"
)

// Lookups return (nil, nil) when the record does not exist.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts the user and fills ID and timestamps
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByEmail retrieves a user by normalised email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// UpdateRole changes a user's role
	UpdateRole(ctx context.Context, id int64, role entities.Role) error

	// Count returns the number of registered users
	Count(ctx context.Context) (int64, error)

	// List returns users ordered by ID
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// Create opens an empty wallet for a user
	Create(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserID returns the wallet with AvailableTokens populated
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate is GetByUserID holding a row lock until the transaction ends
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// LockWallets locks several wallets in user ID order
	LockWallets(ctx context.Context, userIDs ...int64) error

	// AddBalance credits currency
	AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// DeductBalance debits currency, failing with ErrInsufficientBalance when short
	DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// AddTokens credits tokens
	AddTokens(ctx context.Context, userID int64, tokens int64) error

	// DeductTokens debits tokens, failing with ErrInsufficientTokens when short
	DeductTokens(ctx context.Context, userID int64, tokens int64) error

	// TotalTokens returns the sum of all token balances
	TotalTokens(ctx context.Context) (int64, error)
}

// GameRepository defines the interface for game catalogue access
type GameRepository interface {
	Create(ctx context.Context, game *entities.Game) error
	GetByID(ctx context.Context, id int64) (*entities.Game, error)

	// List returns games ordered by popularity, optionally filtered by status
	List(ctx context.Context, status *entities.GameStatus) ([]*entities.Game, error)

	UpdateStatus(ctx context.Context, id int64, status entities.GameStatus) error
	IncrementPopularity(ctx context.Context, id int64) error

	// TopByPopularity returns the most played games
	TopByPopularity(ctx context.Context, limit int) ([]*entities.Game, error)
}

// TournamentRepository defines the interface for tournament data access
type TournamentRepository interface {
	Create(ctx context.Context, tournament *entities.Tournament) error
	GetByID(ctx context.Context, id int64) (*entities.Tournament, error)

	// GetByIDForUpdate locks the tournament row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Tournament, error)

	// List returns tournaments ordered by start date, optionally filtered by status
	List(ctx context.Context, status *entities.TournamentStatus) ([]*entities.Tournament, error)

	// Update persists status, participant count, prize pool and winner
	Update(ctx context.Context, tournament *entities.Tournament) error

	// AddParticipant fails with ErrAlreadyJoined if the user is already entered
	AddParticipant(ctx context.Context, tournamentID, userID int64) error
	IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error)
	GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error)

	// ListByParticipant returns the upcoming and active tournaments a user entered
	ListByParticipant(ctx context.Context, userID int64) ([]*entities.Tournament, error)

	// ListDueForTransition returns upcoming/active tournaments whose schedule has moved on
	ListDueForTransition(ctx context.Context, now time.Time) ([]*entities.Tournament, error)

	CountByStatus(ctx context.Context, status entities.TournamentStatus) (int64, error)
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	Create(ctx context.Context, wager *entities.Wager) error
	GetByID(ctx context.Context, id int64) (*entities.Wager, error)

	// GetByIDForUpdate locks the wager row so concurrent transitions serialise
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error)

	// Update persists status, winner and timestamps
	Update(ctx context.Context, wager *entities.Wager) error

	// ListByUser returns wagers the user created or was challenged to, newest first
	ListByUser(ctx context.Context, userID int64, activeOnly bool, limit int) ([]*entities.Wager, error)

	CountByStatus(ctx context.Context, status entities.WagerState) (int64, error)
}

// TransactionRepository defines the interface for the wallet ledger
type TransactionRepository interface {
	// Create inserts the transaction and fills ID and timestamps
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id int64) (*entities.Transaction, error)

	// GetByIDForUpdate locks the transaction row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Transaction, error)

	// UpdateStatus moves a transaction to a new status, optionally recording the provider reference
	UpdateStatus(ctx context.Context, id int64, status entities.TransactionStatus, providerRef *string) error

	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)

	// SumAmountSince totals pending and completed amounts of a type for one user
	SumAmountSince(ctx context.Context, userID int64, txType entities.TransactionType, since time.Time) (decimal.Decimal, error)

	// SumCompletedAmount totals completed amounts of a type across all users
	SumCompletedAmount(ctx context.Context, txType entities.TransactionType) (decimal.Decimal, error)
}

// TokenRateRepository defines the interface for token value history
type TokenRateRepository interface {
	// GetCurrent returns the latest rate, or nil when none was ever set
	GetCurrent(ctx context.Context) (*entities.TokenRate, error)
	Create(ctx context.Context, rate *entities.TokenRate) error
	List(ctx context.Context, limit int) ([]*entities.TokenRate, error)
}

// RevokedTokenRepository tracks logged-out bearer tokens until they expire
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// PurgeExpired deletes revocations whose token has expired anyway
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entities.Subscription) error

	// GetCurrentByUser returns the active or cancelled-but-paid subscription
	GetCurrentByUser(ctx context.Context, userID int64) (*entities.Subscription, error)

	Update(ctx context.Context, sub *entities.Subscription) error

	// ListDue returns non-expired subscriptions whose renewal time has passed
	ListDue(ctx context.Context, now time.Time) ([]*entities.Subscription, error)

	CountActive(ctx context.Context) (int64, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*entities.Notification, error)

	// MarkRead fails with ErrNotFound unless the notification belongs to the user
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// ComplianceRepository defines the interface for limits and manual reviews
type ComplianceRepository interface {
	GetSettings(ctx context.Context) (*entities.ComplianceSettings, error)
	UpdateSettings(ctx context.Context, settings *entities.ComplianceSettings) error

	CreateReview(ctx context.Context, review *entities.ComplianceReview) error
	GetReviewByID(ctx context.Context, id int64) (*entities.ComplianceReview, error)

	// GetReviewByIDForUpdate locks the review so a decision is taken once
	GetReviewByIDForUpdate(ctx context.Context, id int64) (*entities.ComplianceReview, error)
	UpdateReview(ctx context.Context, review *entities.ComplianceReview) error
	ListReviews(ctx context.Context, status *entities.ReviewStatus, limit int) ([]*entities.ComplianceReview, error)
	CountReviews(ctx context.Context, status entities.ReviewStatus) (int64, error)
}

// TokenRateCache keeps the current token rate close to the API.
// Readers only fill an empty cache, writers replace it once their rate is committed.
type TokenRateCache interface {
	// Get returns nil on a cache miss
	Get(ctx context.Context) (*entities.TokenRate, error)
	// SetIfAbsent caches rate unless a rate is already cached
	SetIfAbsent(ctx context.Context, rate *entities.TokenRate) error
	// Set caches rate unless a rate with a higher ID is already cached
	Set(ctx context.Context, rate *entities.TokenRate) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes buffered events in order
	Flush(ctx context.Context) error

	// Discard drops buffered events
	Discard()
}
