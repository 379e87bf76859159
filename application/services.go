package application

import (
	"context"
	"fmt"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
	"wagerhub/domain/services"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Services are the domain services bound to a single unit of work
type Services struct {
	UoW           UnitOfWork
	Auth          interfaces.AuthService
	Authenticator interfaces.Authenticator
	Wallet        interfaces.WalletService
	TokenRates    interfaces.TokenRateService
	Wagers        interfaces.WagerService
	Tournaments   interfaces.TournamentService
	Games         interfaces.GameService
	Dashboard     interfaces.DashboardService
	Compliance    interfaces.ComplianceService
	Notifications interfaces.NotificationService
	Subscriptions interfaces.SubscriptionService
}

// ServiceRunner runs service calls inside a fresh unit of work
type ServiceRunner struct {
	uowFactory UnitOfWorkFactory
	tokens     *services.TokenManager
	rateCache  interfaces.TokenRateCache
}

// NewServiceRunner creates a new service runner. rateCache may be nil.
func NewServiceRunner(uowFactory UnitOfWorkFactory, tokens *services.TokenManager, rateCache interfaces.TokenRateCache) *ServiceRunner {
	return &ServiceRunner{
		uowFactory: uowFactory,
		tokens:     tokens,
		rateCache:  rateCache,
	}
}

// Bind builds every service on top of a started unit of work
func (r *ServiceRunner) Bind(uow UnitOfWork) *Services {
	bus := uow.EventBus()
	rates := services.NewTokenRateService(uow.TokenRateRepository(), r.rateCache, bus)

	return &Services{
		UoW:           uow,
		Auth:          services.NewAuthService(uow.UserRepository(), uow.WalletRepository(), uow.RevokedTokenRepository(), r.tokens, bus),
		Authenticator: services.NewAuthenticator(r.tokens, uow.RevokedTokenRepository()),
		Wallet:        services.NewWalletService(uow.WalletRepository(), uow.TransactionRepository(), rates, bus),
		TokenRates:    rates,
		Wagers: services.NewWagerService(
			uow.WagerRepository(),
			uow.WalletRepository(),
			uow.GameRepository(),
			uow.TransactionRepository(),
			uow.ComplianceRepository(),
			bus,
		),
		Tournaments: services.NewTournamentService(
			uow.TournamentRepository(),
			uow.WalletRepository(),
			uow.GameRepository(),
			uow.TransactionRepository(),
			bus,
		),
		Games: services.NewGameService(uow.GameRepository()),
		Dashboard: services.NewDashboardService(services.DashboardRepositories{
			Users:         uow.UserRepository(),
			Wallets:       uow.WalletRepository(),
			Games:         uow.GameRepository(),
			Tournaments:   uow.TournamentRepository(),
			Wagers:        uow.WagerRepository(),
			Transactions:  uow.TransactionRepository(),
			Compliance:    uow.ComplianceRepository(),
			Subscriptions: uow.SubscriptionRepository(),
			Notifications: uow.NotificationRepository(),
		}, rates),
		Compliance:    services.NewComplianceService(uow.ComplianceRepository(), bus),
		Notifications: services.NewNotificationService(uow.NotificationRepository()),
		Subscriptions: services.NewSubscriptionService(uow.SubscriptionRepository(), uow.WalletRepository(), uow.TransactionRepository(), bus),
	}
}

// Run begins a unit of work, hands its services to fn and commits when fn succeeds.
// Any error from fn rolls the transaction back and discards queued events.
func (r *ServiceRunner) Run(ctx context.Context, fn func(*Services) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(r.Bind(uow)); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetTokenRate stores a new token rate and, once it is committed, writes it
// to the cache so no reader keeps serving the superseded rate
func (r *ServiceRunner) SetTokenRate(ctx context.Context, adminID int64, rate decimal.Decimal) (*entities.TokenRate, error) {
	var stored *entities.TokenRate
	err := r.Run(ctx, func(s *Services) error {
		var err error
		stored, err = s.TokenRates.SetRate(ctx, adminID, rate)
		return err
	})
	if err != nil {
		return nil, err
	}

	if r.rateCache != nil {
		if err := r.rateCache.Set(ctx, stored); err != nil {
			log.WithError(err).WithField("rate_id", stored.ID).Error("Failed to cache new token rate")
		}
	}
	return stored, nil
}
