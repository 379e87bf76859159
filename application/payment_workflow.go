package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// WithdrawalResult is the outcome of a withdrawal request. Review is set when the
// withdrawal is held for compliance instead of being paid out.
type WithdrawalResult struct {
	Transaction *entities.Transaction      `json:"transaction"`
	Review      *entities.ComplianceReview `json:"review,omitempty"`
}

// ReviewDecision is the outcome of deciding a compliance review
type ReviewDecision struct {
	Review      *entities.ComplianceReview `json:"review"`
	Transaction *entities.Transaction      `json:"transaction,omitempty"`
}

// PaymentWorkflow moves money between wallets and payment processors.
// The provider call happens between two units of work so no database
// transaction is held open while a processor is contacted.
type PaymentWorkflow struct {
	runner    *ServiceRunner
	providers interfaces.PaymentProviderRegistry
	metrics   interfaces.Metrics
}

// NewPaymentWorkflow creates a new payment workflow
func NewPaymentWorkflow(runner *ServiceRunner, providers interfaces.PaymentProviderRegistry) *PaymentWorkflow {
	return &PaymentWorkflow{
		runner:    runner,
		providers: providers,
	}
}

// WithMetrics records payment outcomes on m
func (w *PaymentWorkflow) WithMetrics(m interfaces.Metrics) *PaymentWorkflow {
	w.metrics = m
	return w
}

// Providers lists the processor names accepted by Deposit and Withdraw
func (w *PaymentWorkflow) Providers() []string {
	return w.providers.Names()
}

// Deposit charges the processor and credits the wallet
func (w *PaymentWorkflow) Deposit(ctx context.Context, userID int64, processor string, amount decimal.Decimal) (*entities.Transaction, error) {
	provider, err := w.providers.Get(processor)
	if err != nil {
		return nil, err
	}

	var (
		tx   *entities.Transaction
		user *entities.User
	)
	err = w.runner.Run(ctx, func(s *Services) error {
		// Serialises concurrent deposits so the daily sum includes every pending one
		if err := s.UoW.WalletRepository().LockWallets(ctx, userID); err != nil {
			return err
		}
		settings, err := s.Compliance.GetSettings(ctx)
		if err != nil {
			return err
		}
		since := startOfDay(time.Now())
		depositedToday, err := s.UoW.TransactionRepository().SumAmountSince(ctx, userID, entities.TransactionTypeDeposit, since)
		if err != nil {
			return fmt.Errorf("failed to sum today's deposits: %w", err)
		}
		if err := settings.CheckDeposit(amount, depositedToday); err != nil {
			return err
		}

		if user, err = s.Auth.GetUser(ctx, userID); err != nil {
			return err
		}
		tx, err = s.Wallet.BeginDeposit(ctx, userID, provider.Name(), amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	result, chargeErr := provider.Deposit(ctx, interfaces.ChargeRequest{
		Reference:  tx.Reference,
		UserID:     userID,
		Amount:     amount,
		PayerEmail: user.Email,
	})
	if chargeErr != nil {
		w.failDeposit(ctx, tx, chargeErr)
		w.record(tx.Type, provider.Name(), paymentOutcomeFailed)
		return nil, fmt.Errorf("%w: %w", entities.ErrPaymentFailed, chargeErr)
	}

	// The processor has taken the money, so settle even if the caller went away
	settleCtx, cancel := detached(ctx)
	defer cancel()
	var completed *entities.Transaction
	err = w.runner.Run(settleCtx, func(s *Services) error {
		completed, err = s.Wallet.CompleteDeposit(settleCtx, tx.ID, result.ProviderRef)
		return err
	})
	if err != nil {
		w.record(tx.Type, provider.Name(), paymentOutcomeUnsettled)
		// The processor has the money but the wallet was not credited
		log.WithFields(log.Fields{
			"transaction_id": tx.ID,
			"user_id":        userID,
			"provider":       provider.Name(),
			"provider_ref":   result.ProviderRef,
		}).WithError(err).Error("Failed to credit a charged deposit")
		return nil, err
	}

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"user_id":        userID,
		"provider":       provider.Name(),
		"amount":         amount.StringFixed(2),
	}).Info("Deposit completed")
	w.record(tx.Type, provider.Name(), paymentOutcomeCompleted)
	return completed, nil
}

// Withdraw holds the funds and pays them out, or parks the withdrawal for
// compliance review when it exceeds the review threshold
func (w *PaymentWorkflow) Withdraw(ctx context.Context, userID int64, processor string, amount decimal.Decimal) (*WithdrawalResult, error) {
	provider, err := w.providers.Get(processor)
	if err != nil {
		return nil, err
	}

	var (
		result = &WithdrawalResult{}
		user   *entities.User
	)
	err = w.runner.Run(ctx, func(s *Services) error {
		settings, err := s.Compliance.GetSettings(ctx)
		if err != nil {
			return err
		}
		if err := settings.CheckWithdrawal(amount); err != nil {
			return err
		}

		if user, err = s.Auth.GetUser(ctx, userID); err != nil {
			return err
		}
		if result.Transaction, err = s.Wallet.HoldWithdrawal(ctx, userID, provider.Name(), amount); err != nil {
			return err
		}

		if !settings.RequiresReview(amount) {
			return nil
		}
		reason := fmt.Sprintf("withdrawal of %s exceeds review threshold of %s",
			amount.StringFixed(2), settings.WithdrawalReviewThreshold.StringFixed(2))
		if result.Review, err = s.Compliance.OpenReview(ctx, userID, result.Transaction.ID, reason); err != nil {
			return err
		}
		event := events.PaymentStatusChangeEvent{
			TransactionID: result.Transaction.ID,
			UserID:        userID,
			TxType:        result.Transaction.Type,
			Amount:        result.Transaction.Amount.Abs(),
			Provider:      provider.Name(),
			Status:        result.Transaction.Status,
			UnderReview:   true,
		}
		if err := s.UoW.EventBus().Publish(event); err != nil {
			log.WithFields(log.Fields{
				"event_type":     event.Type(),
				"transaction_id": event.TransactionID,
			}).WithError(err).Error("Failed to publish payment status change event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Review != nil {
		w.record(result.Transaction.Type, provider.Name(), paymentOutcomeUnderReview)
		return result, nil
	}

	if result.Transaction, err = w.payout(ctx, provider, user, result.Transaction); err != nil {
		return nil, err
	}
	return result, nil
}

// DecideReview records a staff decision. Approving a withdrawal review pays it out,
// rejecting it returns the held funds.
func (w *PaymentWorkflow) DecideReview(ctx context.Context, reviewID, reviewerID int64, approve bool, notes string) (*ReviewDecision, error) {
	decision := &ReviewDecision{}
	var user *entities.User

	err := w.runner.Run(ctx, func(s *Services) error {
		review, err := s.Compliance.DecideReview(ctx, reviewID, reviewerID, approve, notes)
		if err != nil {
			return err
		}
		decision.Review = review
		if review.TransactionID == nil {
			return nil
		}

		tx, err := s.UoW.TransactionRepository().GetByID(ctx, *review.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to get reviewed transaction: %w", err)
		}
		if tx == nil || tx.Type != entities.TransactionTypeWithdrawal || tx.Status != entities.TransactionStatusPending {
			decision.Transaction = tx
			return nil
		}

		if !approve {
			decision.Transaction, err = s.Wallet.RefundWithdrawal(ctx, tx.ID, "rejected by compliance review")
			return err
		}
		decision.Transaction = tx
		user, err = s.Auth.GetUser(ctx, tx.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if user == nil {
		return decision, nil
	}

	tx := decision.Transaction
	processor := ""
	if tx.Provider != nil {
		processor = *tx.Provider
	}
	provider, err := w.providers.Get(processor)
	if err != nil {
		w.refund(ctx, tx, err)
		return nil, err
	}

	if decision.Transaction, err = w.payout(ctx, provider, user, tx); err != nil {
		return nil, err
	}
	return decision, nil
}

// payout sends a held withdrawal to the processor and settles it
func (w *PaymentWorkflow) payout(ctx context.Context, provider interfaces.PaymentProvider, user *entities.User, tx *entities.Transaction) (*entities.Transaction, error) {
	result, payErr := provider.Withdraw(ctx, interfaces.PayoutRequest{
		Reference:      tx.Reference,
		UserID:         tx.UserID,
		Amount:         tx.Amount.Abs(),
		RecipientEmail: user.Email,
	})
	if payErr != nil {
		w.refund(ctx, tx, payErr)
		w.record(tx.Type, provider.Name(), paymentOutcomeFailed)
		return nil, fmt.Errorf("%w: %w", entities.ErrPaymentFailed, payErr)
	}

	settleCtx, cancel := detached(ctx)
	defer cancel()

	var completed *entities.Transaction
	err := w.runner.Run(settleCtx, func(s *Services) error {
		var err error
		completed, err = s.Wallet.CompleteWithdrawal(settleCtx, tx.ID, result.ProviderRef)
		return err
	})
	if err != nil {
		w.record(tx.Type, provider.Name(), paymentOutcomeUnsettled)
		log.WithFields(log.Fields{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
			"provider":       provider.Name(),
			"provider_ref":   result.ProviderRef,
		}).WithError(err).Error("Failed to settle a paid out withdrawal")
		return nil, err
	}

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"provider":       provider.Name(),
		"amount":         tx.Amount.Abs().StringFixed(2),
	}).Info("Withdrawal completed")
	w.record(tx.Type, provider.Name(), paymentOutcomeCompleted)
	return completed, nil
}

// failDeposit marks a deposit failed in its own unit of work. The request
// context may already be cancelled, so a detached one is used.
func (w *PaymentWorkflow) failDeposit(parent context.Context, tx *entities.Transaction, cause error) {
	ctx, cancel := detached(parent)
	defer cancel()

	err := w.runner.Run(ctx, func(s *Services) error {
		_, err := s.Wallet.FailTransaction(ctx, tx.ID, cause.Error())
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"transaction_id": tx.ID,
			"cause":          cause.Error(),
		}).WithError(err).Error("Failed to mark deposit failed")
	}
}

// refund returns held withdrawal funds in a compensating unit of work
func (w *PaymentWorkflow) refund(parent context.Context, tx *entities.Transaction, cause error) {
	ctx, cancel := detached(parent)
	defer cancel()

	err := w.runner.Run(ctx, func(s *Services) error {
		_, err := s.Wallet.RefundWithdrawal(ctx, tx.ID, cause.Error())
		return err
	})
	if err != nil && !errors.Is(err, entities.ErrInvalidState) {
		log.WithFields(log.Fields{
			"transaction_id": tx.ID,
			"cause":          cause.Error(),
		}).WithError(err).Error("Failed to refund withdrawal")
	}
}

func (w *PaymentWorkflow) record(txType entities.TransactionType, provider, outcome string) {
	if w.metrics != nil {
		w.metrics.RecordPayment(string(txType), provider, outcome)
	}
}

// detached keeps the values of ctx but not its cancellation, for work that
// must finish once a processor has been contacted
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}

const compensationTimeout = 10 * time.Second

// Payment outcomes reported to metrics
const (
	paymentOutcomeCompleted   = "completed"
	paymentOutcomeFailed      = "failed"
	paymentOutcomeUnderReview = "under_review"
	paymentOutcomeUnsettled   = "unsettled"
)

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
