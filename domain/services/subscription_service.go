package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wagerhub/config"
	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type subscriptionService struct {
	subscriptionRepo interfaces.SubscriptionRepository
	walletRepo       interfaces.WalletRepository
	transactionRepo  interfaces.TransactionRepository
	eventPublisher   interfaces.EventPublisher
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subscriptionRepo interfaces.SubscriptionRepository, walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher) interfaces.SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		walletRepo:       walletRepo,
		transactionRepo:  transactionRepo,
		eventPublisher:   eventPublisher,
	}
}

// PlanPrice returns the configured price of a plan
func PlanPrice(plan entities.SubscriptionPlan) decimal.Decimal {
	cfg := config.Get()
	if plan == entities.SubscriptionPlanPremium {
		return cfg.SubscriptionPremiumPrice
	}
	return cfg.SubscriptionBasicPrice
}

// Subscribe charges the first period and starts the plan
func (s *subscriptionService) Subscribe(ctx context.Context, userID int64, plan entities.SubscriptionPlan) (*entities.Subscription, error) {
	if !plan.IsValid() {
		return nil, fmt.Errorf("%w: unknown plan %q", entities.ErrInvalidInput, plan)
	}

	now := time.Now().UTC()
	current, err := s.subscriptionRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if current != nil {
		if current.IsUsable(now) {
			return nil, entities.ErrActiveSubscription
		}
		// Cancelled and past its paid period, but the sweep hasn't expired it yet
		current.Status = entities.SubscriptionStatusExpired
		if err := s.subscriptionRepo.Update(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to expire subscription: %w", err)
		}
	}

	price := PlanPrice(plan)
	if err := s.charge(ctx, userID, price); err != nil {
		return nil, err
	}

	sub := &entities.Subscription{
		UserID:    userID,
		Plan:      plan,
		Price:     price,
		Status:    entities.SubscriptionStatusActive,
		StartedAt: now,
		RenewsAt:  now.Add(entities.SubscriptionPeriod),
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := s.recordCharge(ctx, sub); err != nil {
		return nil, err
	}
	s.publishChange(sub, false)

	log.WithFields(log.Fields{
		"user_id": userID,
		"plan":    plan,
		"price":   price.StringFixed(2),
	}).Info("Subscription started")
	return sub, nil
}

// Cancel stops renewals; the plan stays usable until the paid period ends
func (s *subscriptionService) Cancel(ctx context.Context, userID int64) (*entities.Subscription, error) {
	sub, err := s.subscriptionRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("subscription: %w", entities.ErrNotFound)
	}
	if sub.Status != entities.SubscriptionStatusActive {
		return nil, fmt.Errorf("%w: subscription is %s", entities.ErrInvalidState, sub.Status)
	}

	now := time.Now().UTC()
	sub.Status = entities.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.publishChange(sub, false)
	return sub, nil
}

// GetCurrent returns the user's subscription, or nil when they have none
func (s *subscriptionService) GetCurrent(ctx context.Context, userID int64) (*entities.Subscription, error) {
	sub, err := s.subscriptionRepo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// RenewDue charges active subscriptions for another period and expires the rest
func (s *subscriptionService) RenewDue(ctx context.Context, now time.Time) (*interfaces.RenewalSummary, error) {
	due, err := s.subscriptionRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}

	summary := &interfaces.RenewalSummary{}
	for _, sub := range due {
		if !sub.IsDue(now) {
			continue
		}

		if sub.Status == entities.SubscriptionStatusActive {
			err := s.charge(ctx, sub.UserID, sub.Price)
			switch {
			case err == nil:
				sub.RenewsAt = sub.RenewsAt.Add(entities.SubscriptionPeriod)
				if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
					return summary, fmt.Errorf("failed to renew subscription %d: %w", sub.ID, err)
				}
				if err := s.recordCharge(ctx, sub); err != nil {
					return summary, err
				}
				summary.Renewed++
				s.publishChange(sub, true)
				continue
			case !isInsufficientFunds(err):
				return summary, err
			}
			log.WithFields(log.Fields{
				"subscription_id": sub.ID,
				"user_id":         sub.UserID,
			}).Info("Subscription expired for insufficient balance")
		}

		sub.Status = entities.SubscriptionStatusExpired
		if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
			return summary, fmt.Errorf("failed to expire subscription %d: %w", sub.ID, err)
		}
		summary.Expired++
		s.publishChange(sub, false)
	}
	return summary, nil
}

func (s *subscriptionService) charge(ctx context.Context, userID int64, price decimal.Decimal) error {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
	}
	if !wallet.CanAffordCurrency(price) {
		return fmt.Errorf("%w: have %s, need %s", entities.ErrInsufficientBalance, wallet.Balance.StringFixed(2), price.StringFixed(2))
	}
	if err := s.walletRepo.DeductBalance(ctx, userID, price); err != nil {
		return fmt.Errorf("failed to charge subscription: %w", err)
	}
	return nil
}

func (s *subscriptionService) recordCharge(ctx context.Context, sub *entities.Subscription) error {
	tx := entities.NewTransaction(sub.UserID, entities.TransactionTypeSubscriptionCharge, entities.TransactionStatusCompleted).
		WithRelated(entities.RelatedTypeSubscription, sub.ID)
	tx.Amount = sub.Price.Neg()
	tx.Metadata["plan"] = string(sub.Plan)
	return RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx)
}

func (s *subscriptionService) publishChange(sub *entities.Subscription, renewed bool) {
	if err := s.eventPublisher.Publish(events.SubscriptionChangeEvent{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Plan:           sub.Plan,
		Status:         sub.Status,
		Renewed:        renewed,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeSubscriptionChange).Error("Failed to publish subscription change event")
	}
}

func isInsufficientFunds(err error) bool {
	return errors.Is(err, entities.ErrInsufficientBalance)
}
