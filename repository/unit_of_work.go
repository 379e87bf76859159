package repository

import (
	"context"
	"fmt"

	"wagerhub/application"
	"wagerhub/database"
	"wagerhub/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const notStarted = "unit of work not started - call Begin() first"

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	userRepo               interfaces.UserRepository
	walletRepo             interfaces.WalletRepository
	gameRepo               interfaces.GameRepository
	tournamentRepo         interfaces.TournamentRepository
	wagerRepo              interfaces.WagerRepository
	transactionRepo        interfaces.TransactionRepository
	tokenRateRepo          interfaces.TokenRateRepository
	revokedTokenRepo       interfaces.RevokedTokenRepository
	subscriptionRepo       interfaces.SubscriptionRepository
	notificationRepo       interfaces.NotificationRepository
	complianceRepo         interfaces.ComplianceRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// UnitOfWorkFactory builds database-only units of work
type UnitOfWorkFactory struct {
	db *database.DB
}

// Create creates a UnitOfWork without an event bus
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.CreateWithPublisher(nil)
}

// CreateWithPublisher creates a UnitOfWork whose events are flushed on commit
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = NewUserRepositoryScoped(tx)
	u.walletRepo = NewWalletRepositoryScoped(tx)
	u.gameRepo = NewGameRepositoryScoped(tx)
	u.tournamentRepo = NewTournamentRepositoryScoped(tx)
	u.wagerRepo = NewWagerRepositoryScoped(tx)
	u.transactionRepo = NewTransactionRepositoryScoped(tx)
	u.tokenRateRepo = NewTokenRateRepositoryScoped(tx)
	u.revokedTokenRepo = NewRevokedTokenRepositoryScoped(tx)
	u.subscriptionRepo = NewSubscriptionRepositoryScoped(tx)
	u.notificationRepo = NewNotificationRepositoryScoped(tx)
	u.complianceRepo = NewComplianceRepositoryScoped(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	if u.userRepo == nil {
		panic(notStarted)
	}
	return u.userRepo
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() interfaces.WalletRepository {
	if u.walletRepo == nil {
		panic(notStarted)
	}
	return u.walletRepo
}

// GameRepository returns the game repository for this unit of work
func (u *unitOfWork) GameRepository() interfaces.GameRepository {
	if u.gameRepo == nil {
		panic(notStarted)
	}
	return u.gameRepo
}

// TournamentRepository returns the tournament repository for this unit of work
func (u *unitOfWork) TournamentRepository() interfaces.TournamentRepository {
	if u.tournamentRepo == nil {
		panic(notStarted)
	}
	return u.tournamentRepo
}

// WagerRepository returns the wager repository for this unit of work
func (u *unitOfWork) WagerRepository() interfaces.WagerRepository {
	if u.wagerRepo == nil {
		panic(notStarted)
	}
	return u.wagerRepo
}

// TransactionRepository returns the ledger repository for this unit of work
func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	if u.transactionRepo == nil {
		panic(notStarted)
	}
	return u.transactionRepo
}

// TokenRateRepository returns the token rate repository for this unit of work
func (u *unitOfWork) TokenRateRepository() interfaces.TokenRateRepository {
	if u.tokenRateRepo == nil {
		panic(notStarted)
	}
	return u.tokenRateRepo
}

// RevokedTokenRepository returns the revoked token repository for this unit of work
func (u *unitOfWork) RevokedTokenRepository() interfaces.RevokedTokenRepository {
	if u.revokedTokenRepo == nil {
		panic(notStarted)
	}
	return u.revokedTokenRepo
}

// SubscriptionRepository returns the subscription repository for this unit of work
func (u *unitOfWork) SubscriptionRepository() interfaces.SubscriptionRepository {
	if u.subscriptionRepo == nil {
		panic(notStarted)
	}
	return u.subscriptionRepo
}

// NotificationRepository returns the notification repository for this unit of work
func (u *unitOfWork) NotificationRepository() interfaces.NotificationRepository {
	if u.notificationRepo == nil {
		panic(notStarted)
	}
	return u.notificationRepo
}

// ComplianceRepository returns the compliance repository for this unit of work
func (u *unitOfWork) ComplianceRepository() interfaces.ComplianceRepository {
	if u.complianceRepo == nil {
		panic(notStarted)
	}
	return u.complianceRepo
}

// EventBus returns the transactional event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		return discardPublisher{}
	}
	return u.transactionalPublisher
}
