package interfaces

import (
	"context"
	"time"

	"wagerhub/domain/entities"

	"github.com/shopspring/decimal"
)

// AuthResult is returned by register and login
type AuthResult struct {
	User      *entities.User   `json:"user"`
	Wallet    *entities.Wallet `json:"wallet,omitempty"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// AuthService defines the interface for account and session operations
type AuthService interface {
	// Register creates a player account with an empty wallet
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)

	// Login verifies credentials and issues a bearer token
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Logout revokes the token described by the claims
	Logout(ctx context.Context, claims *entities.Claims) error

	// GetUser returns the account behind a user ID
	GetUser(ctx context.Context, userID int64) (*entities.User, error)

	// ChangeRole assigns a new role to a user
	ChangeRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error)
}

// Authenticator validates bearer tokens on every request
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.Claims, error)
}

// WalletView is a wallet together with the rate used to value its tokens
type WalletView struct {
	Wallet    *entities.Wallet    `json:"wallet"`
	TokenRate *entities.TokenRate `json:"tokenRate"`
}

// ConversionResult describes a completed currency/token conversion
type ConversionResult struct {
	Transaction    *entities.Transaction `json:"transaction"`
	Wallet         *entities.Wallet      `json:"wallet"`
	Rate           decimal.Decimal       `json:"rate"`
	CurrencyAmount decimal.Decimal       `json:"currencyAmount"`
	Tokens         int64                 `json:"tokens"`
}

// WalletService defines the interface for wallet, conversion and payment bookkeeping
type WalletService interface {
	GetWallet(ctx context.Context, userID int64) (*WalletView, error)

	// ConvertToTokens spends currency on whole tokens at the current rate
	ConvertToTokens(ctx context.Context, userID int64, amount decimal.Decimal) (*ConversionResult, error)

	// ConvertToCurrency redeems unstaked tokens for currency at the current rate
	ConvertToCurrency(ctx context.Context, userID int64, tokens int64) (*ConversionResult, error)

	ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)

	// BeginDeposit records a pending deposit before the provider is charged
	BeginDeposit(ctx context.Context, userID int64, provider string, amount decimal.Decimal) (*entities.Transaction, error)

	// CompleteDeposit credits the wallet for a pending deposit
	CompleteDeposit(ctx context.Context, transactionID int64, providerRef string) (*entities.Transaction, error)

	// HoldWithdrawal debits the wallet and records a pending withdrawal
	HoldWithdrawal(ctx context.Context, userID int64, provider string, amount decimal.Decimal) (*entities.Transaction, error)

	// CompleteWithdrawal marks a held withdrawal as paid out
	CompleteWithdrawal(ctx context.Context, transactionID int64, providerRef string) (*entities.Transaction, error)

	// RefundWithdrawal returns held funds and marks the withdrawal failed
	RefundWithdrawal(ctx context.Context, transactionID int64, reason string) (*entities.Transaction, error)

	// FailTransaction marks a pending transaction failed without moving funds
	FailTransaction(ctx context.Context, transactionID int64, reason string) (*entities.Transaction, error)
}

// TokenRateService defines the interface for the admin-controlled token value
type TokenRateService interface {
	GetCurrentRate(ctx context.Context) (*entities.TokenRate, error)
	SetRate(ctx context.Context, adminID int64, rate decimal.Decimal) (*entities.TokenRate, error)
	History(ctx context.Context, limit int) ([]*entities.TokenRate, error)
}

// WagerService defines the interface for peer-to-peer wagers
type WagerService interface {
	CreateWager(ctx context.Context, userID, opponentID, gameID, amount int64, terms string) (*entities.Wager, error)
	AcceptWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error)
	DeclineWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error)
	CancelWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error)

	// CompleteWager settles an accepted wager; either participant may report the winner
	CompleteWager(ctx context.Context, wagerID, reporterID, winnerID int64) (*entities.Wager, error)

	// GetWager returns a wager visible to the given participant
	GetWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error)
	ListUserWagers(ctx context.Context, userID int64, activeOnly bool, limit int) ([]*entities.Wager, error)
}

// CreateTournamentParams holds the fields staff supply for a new tournament
type CreateTournamentParams struct {
	Name            string
	GameID          int64
	StartDate       time.Time
	EndDate         time.Time
	MaxParticipants int
	EntryFee        int64
}

// TournamentService defines the interface for tournament management
type TournamentService interface {
	ListTournaments(ctx context.Context, status *entities.TournamentStatus) ([]*entities.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*entities.Tournament, error)
	GetParticipants(ctx context.Context, id int64) ([]*entities.TournamentParticipant, error)
	CreateTournament(ctx context.Context, creatorID int64, params CreateTournamentParams) (*entities.Tournament, error)

	// JoinTournament charges the entry fee and takes a seat
	JoinTournament(ctx context.Context, tournamentID, userID int64) (*entities.Tournament, error)

	// AdvanceStatuses moves tournaments along their schedule and returns how many changed
	AdvanceStatuses(ctx context.Context, now time.Time) (int, error)

	// SettleTournament pays the prize pool to a participant
	SettleTournament(ctx context.Context, tournamentID, winnerID int64) (*entities.Tournament, error)

	// CancelTournament refunds every entry fee
	CancelTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error)
}

// GameService defines the interface for the game catalogue
type GameService interface {
	ListGames(ctx context.Context, status *entities.GameStatus) ([]*entities.Game, error)
	GetGame(ctx context.Context, id int64) (*entities.Game, error)
	CreateGame(ctx context.Context, name, description string) (*entities.Game, error)
	UpdateGameStatus(ctx context.Context, id int64, status entities.GameStatus) (*entities.Game, error)
}

// DashboardService defines the interface for aggregate views
type DashboardService interface {
	GetPlatformMetrics(ctx context.Context) (*entities.DashboardMetrics, error)
	GetUserDashboard(ctx context.Context, userID int64) (*entities.UserDashboard, error)
}

// ComplianceService defines the interface for limits and manual reviews
type ComplianceService interface {
	GetSettings(ctx context.Context) (*entities.ComplianceSettings, error)
	UpdateSettings(ctx context.Context, adminID int64, settings *entities.ComplianceSettings) (*entities.ComplianceSettings, error)
	OpenReview(ctx context.Context, userID, transactionID int64, reason string) (*entities.ComplianceReview, error)
	GetReview(ctx context.Context, reviewID int64) (*entities.ComplianceReview, error)
	ListReviews(ctx context.Context, status *entities.ReviewStatus, limit int) ([]*entities.ComplianceReview, error)

	// DecideReview records the decision; moving the held funds is up to the caller
	DecideReview(ctx context.Context, reviewID, reviewerID int64, approve bool, notes string) (*entities.ComplianceReview, error)
}

// NotificationService defines the interface for in-app notifications
type NotificationService interface {
	Notify(ctx context.Context, userID int64, notificationType entities.NotificationType, title, message string, relatedID *int64) (*entities.Notification, error)
	List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*entities.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// RenewalSummary reports what a renewal run did
type RenewalSummary struct {
	Renewed int
	Expired int
}

// SubscriptionService defines the interface for paid plans
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID int64, plan entities.SubscriptionPlan) (*entities.Subscription, error)
	Cancel(ctx context.Context, userID int64) (*entities.Subscription, error)
	GetCurrent(ctx context.Context, userID int64) (*entities.Subscription, error)

	// RenewDue charges or expires every subscription past its renewal time
	RenewDue(ctx context.Context, now time.Time) (*RenewalSummary, error)
}
