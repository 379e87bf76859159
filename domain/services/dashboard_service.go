package services

import (
	"context"
	"fmt"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
)

const (
	topGamesLimit       = 5
	dashboardWagerLimit = 20
)

type dashboardService struct {
	userRepo         interfaces.UserRepository
	walletRepo       interfaces.WalletRepository
	gameRepo         interfaces.GameRepository
	tournamentRepo   interfaces.TournamentRepository
	wagerRepo        interfaces.WagerRepository
	transactionRepo  interfaces.TransactionRepository
	complianceRepo   interfaces.ComplianceRepository
	subscriptionRepo interfaces.SubscriptionRepository
	notificationRepo interfaces.NotificationRepository
	rates            interfaces.TokenRateService
}

// DashboardRepositories groups the read models the dashboard aggregates
type DashboardRepositories struct {
	Users         interfaces.UserRepository
	Wallets       interfaces.WalletRepository
	Games         interfaces.GameRepository
	Tournaments   interfaces.TournamentRepository
	Wagers        interfaces.WagerRepository
	Transactions  interfaces.TransactionRepository
	Compliance    interfaces.ComplianceRepository
	Subscriptions interfaces.SubscriptionRepository
	Notifications interfaces.NotificationRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos DashboardRepositories, rates interfaces.TokenRateService) interfaces.DashboardService {
	return &dashboardService{
		userRepo:         repos.Users,
		walletRepo:       repos.Wallets,
		gameRepo:         repos.Games,
		tournamentRepo:   repos.Tournaments,
		wagerRepo:        repos.Wagers,
		transactionRepo:  repos.Transactions,
		complianceRepo:   repos.Compliance,
		subscriptionRepo: repos.Subscriptions,
		notificationRepo: repos.Notifications,
		rates:            rates,
	}
}

// GetPlatformMetrics aggregates platform-wide counters for staff
func (s *dashboardService) GetPlatformMetrics(ctx context.Context) (*entities.DashboardMetrics, error) {
	metrics := &entities.DashboardMetrics{}
	var err error

	if metrics.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if metrics.ActiveTournaments, err = s.tournamentRepo.CountByStatus(ctx, entities.TournamentStatusActive); err != nil {
		return nil, fmt.Errorf("failed to count active tournaments: %w", err)
	}
	if metrics.UpcomingTournaments, err = s.tournamentRepo.CountByStatus(ctx, entities.TournamentStatusUpcoming); err != nil {
		return nil, fmt.Errorf("failed to count upcoming tournaments: %w", err)
	}
	if metrics.PendingWagers, err = s.wagerRepo.CountByStatus(ctx, entities.WagerStatePending); err != nil {
		return nil, fmt.Errorf("failed to count pending wagers: %w", err)
	}
	if metrics.AcceptedWagers, err = s.wagerRepo.CountByStatus(ctx, entities.WagerStateAccepted); err != nil {
		return nil, fmt.Errorf("failed to count accepted wagers: %w", err)
	}
	if metrics.CompletedWagers, err = s.wagerRepo.CountByStatus(ctx, entities.WagerStateCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed wagers: %w", err)
	}

	deposits, err := s.transactionRepo.SumCompletedAmount(ctx, entities.TransactionTypeDeposit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deposits: %w", err)
	}
	metrics.TotalDeposits = deposits

	// Withdrawals are stored as negative amounts
	withdrawals, err := s.transactionRepo.SumCompletedAmount(ctx, entities.TransactionTypeWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	metrics.TotalWithdrawals = withdrawals.Abs()

	if metrics.TokensInCirculation, err = s.walletRepo.TotalTokens(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum tokens: %w", err)
	}
	if metrics.PendingReviews, err = s.complianceRepo.CountReviews(ctx, entities.ReviewStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count pending reviews: %w", err)
	}
	if metrics.ActiveSubscriptions, err = s.subscriptionRepo.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	if metrics.TopGames, err = s.gameRepo.TopByPopularity(ctx, topGamesLimit); err != nil {
		return nil, fmt.Errorf("failed to get top games: %w", err)
	}

	rate, err := s.rates.GetCurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CurrentTokenRate = rate.Rate

	return metrics, nil
}

// GetUserDashboard builds the landing view for one user
func (s *dashboardService) GetUserDashboard(ctx context.Context, userID int64) (*entities.UserDashboard, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
	}

	wagers, err := s.wagerRepo.ListByUser(ctx, userID, true, dashboardWagerLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	tournaments, err := s.tournamentRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	sub, err := s.subscriptionRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub != nil && !sub.IsUsable(time.Now()) {
		sub = nil
	}

	rate, err := s.rates.GetCurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	return &entities.UserDashboard{
		Wallet:              wallet,
		ActiveWagers:        wagers,
		Tournaments:         tournaments,
		UnreadNotifications: unread,
		Subscription:        sub,
		TokenRate:           rate.Rate,
	}, nil
}
