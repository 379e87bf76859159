package application

import (
	"context"

	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	WalletRepository() interfaces.WalletRepository
	GameRepository() interfaces.GameRepository
	TournamentRepository() interfaces.TournamentRepository
	WagerRepository() interfaces.WagerRepository
	TransactionRepository() interfaces.TransactionRepository
	TokenRateRepository() interfaces.TokenRateRepository
	RevokedTokenRepository() interfaces.RevokedTokenRepository
	SubscriptionRepository() interfaces.SubscriptionRepository
	NotificationRepository() interfaces.NotificationRepository
	ComplianceRepository() interfaces.ComplianceRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a fresh UnitOfWork; call Begin before using its repositories
	Create() UnitOfWork
}

// EventHandler handles one domain event after the publishing transaction commits
type EventHandler func(ctx context.Context, event events.Event) error

// EventSubscriber registers in-process event handlers
type EventSubscriber interface {
	RegisterLocalHandler(eventType events.EventType, handler EventHandler)
}
