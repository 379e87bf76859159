package services

import (
	"context"
	"fmt"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type walletService struct {
	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	rates           interfaces.TokenRateService
	eventPublisher  interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo interfaces.WalletRepository, transactionRepo interfaces.TransactionRepository, rates interfaces.TokenRateService, eventPublisher interfaces.EventPublisher) interfaces.WalletService {
	return &walletService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		rates:           rates,
		eventPublisher:  eventPublisher,
	}
}

// GetWallet returns the wallet together with the current token rate
func (s *walletService) GetWallet(ctx context.Context, userID int64) (*interfaces.WalletView, error) {
	wallet, err := s.getWallet(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.GetCurrentRate(ctx)
	if err != nil {
		return nil, err
	}
	return &interfaces.WalletView{Wallet: wallet, TokenRate: rate}, nil
}

// ConvertToTokens spends currency on whole tokens. Only the cost of the whole tokens is charged.
func (s *walletService) ConvertToTokens(ctx context.Context, userID int64, amount decimal.Decimal) (*interfaces.ConversionResult, error) {
	if !entities.IsCurrencyAmount(amount) {
		return nil, entities.ErrInvalidAmount
	}

	rate, err := s.rates.GetCurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	tokens := rate.ToTokens(amount)
	if tokens <= 0 {
		return nil, fmt.Errorf("%w: amount is too small to buy a token", entities.ErrInvalidAmount)
	}
	cost := rate.CurrencyCost(tokens)

	wallet, err := s.getWallet(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if !wallet.CanAffordCurrency(cost) {
		return nil, fmt.Errorf("%w: have %s, need %s", entities.ErrInsufficientBalance, wallet.Balance.StringFixed(2), cost.StringFixed(2))
	}

	if err := s.walletRepo.DeductBalance(ctx, userID, cost); err != nil {
		return nil, fmt.Errorf("failed to deduct balance: %w", err)
	}
	if err := s.walletRepo.AddTokens(ctx, userID, tokens); err != nil {
		return nil, fmt.Errorf("failed to add tokens: %w", err)
	}

	tx := entities.NewTransaction(userID, entities.TransactionTypeTokenPurchase, entities.TransactionStatusCompleted)
	tx.Amount = cost.Neg()
	tx.TokenAmount = tokens
	tx.Metadata["rate"] = rate.Rate.String()
	tx.Metadata["requested_amount"] = amount.StringFixed(2)
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Sub(cost)
	wallet.TokenBalance += tokens
	wallet.AvailableTokens += tokens

	log.WithFields(log.Fields{
		"user_id": userID,
		"cost":    cost.StringFixed(2),
		"tokens":  tokens,
		"rate":    rate.Rate.String(),
	}).Info("Converted currency to tokens")

	return &interfaces.ConversionResult{
		Transaction:    tx,
		Wallet:         wallet,
		Rate:           rate.Rate,
		CurrencyAmount: cost,
		Tokens:         tokens,
	}, nil
}

// ConvertToCurrency redeems unstaked tokens for currency, rounding the payout down to cents
func (s *walletService) ConvertToCurrency(ctx context.Context, userID int64, tokens int64) (*interfaces.ConversionResult, error) {
	if tokens <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	rate, err := s.rates.GetCurrentRate(ctx)
	if err != nil {
		return nil, err
	}

	payout := rate.ToCurrency(tokens)
	if !payout.IsPositive() {
		return nil, fmt.Errorf("%w: too few tokens to redeem", entities.ErrInvalidAmount)
	}

	wallet, err := s.getWallet(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if !wallet.CanAffordTokens(tokens) {
		return nil, fmt.Errorf("%w: have %d available, need %d", entities.ErrInsufficientTokens, wallet.AvailableTokens, tokens)
	}

	if err := s.walletRepo.DeductTokens(ctx, userID, tokens); err != nil {
		return nil, fmt.Errorf("failed to deduct tokens: %w", err)
	}
	if err := s.walletRepo.AddBalance(ctx, userID, payout); err != nil {
		return nil, fmt.Errorf("failed to add balance: %w", err)
	}

	tx := entities.NewTransaction(userID, entities.TransactionTypeTokenRedemption, entities.TransactionStatusCompleted)
	tx.Amount = payout
	tx.TokenAmount = -tokens
	tx.Metadata["rate"] = rate.Rate.String()
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Add(payout)
	wallet.TokenBalance -= tokens
	wallet.AvailableTokens -= tokens

	return &interfaces.ConversionResult{
		Transaction:    tx,
		Wallet:         wallet,
		Rate:           rate.Rate,
		CurrencyAmount: payout,
		Tokens:         tokens,
	}, nil
}

// ListTransactions returns the user's ledger, newest first
func (s *walletService) ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	txs, err := s.transactionRepo.ListByUser(ctx, userID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// BeginDeposit records a pending deposit before the provider is charged
func (s *walletService) BeginDeposit(ctx context.Context, userID int64, provider string, amount decimal.Decimal) (*entities.Transaction, error) {
	if !entities.IsCurrencyAmount(amount) {
		return nil, entities.ErrInvalidAmount
	}
	if _, err := s.getWallet(ctx, userID, false); err != nil {
		return nil, err
	}

	tx := entities.NewTransaction(userID, entities.TransactionTypeDeposit, entities.TransactionStatusPending).WithProvider(provider)
	tx.Amount = amount
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	s.publishPaymentStatus(tx, false)
	return tx, nil
}

// CompleteDeposit credits the wallet for a pending deposit
func (s *walletService) CompleteDeposit(ctx context.Context, transactionID int64, providerRef string) (*entities.Transaction, error) {
	tx, err := s.getPending(ctx, transactionID, entities.TransactionTypeDeposit)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.AddBalance(ctx, tx.UserID, tx.Amount); err != nil {
		return nil, fmt.Errorf("failed to credit deposit: %w", err)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, entities.TransactionStatusCompleted, &providerRef); err != nil {
		return nil, fmt.Errorf("failed to complete deposit: %w", err)
	}
	tx.Status = entities.TransactionStatusCompleted
	tx.ProviderRef = &providerRef

	publishBalanceChange(s.eventPublisher, tx)
	s.publishPaymentStatus(tx, false)
	return tx, nil
}

// HoldWithdrawal debits the wallet up front so the funds can't be spent while the payout runs
func (s *walletService) HoldWithdrawal(ctx context.Context, userID int64, provider string, amount decimal.Decimal) (*entities.Transaction, error) {
	if !entities.IsCurrencyAmount(amount) {
		return nil, entities.ErrInvalidAmount
	}

	wallet, err := s.getWallet(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if !wallet.CanAffordCurrency(amount) {
		return nil, fmt.Errorf("%w: have %s, need %s", entities.ErrInsufficientBalance, wallet.Balance.StringFixed(2), amount.StringFixed(2))
	}

	if err := s.walletRepo.DeductBalance(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to hold withdrawal: %w", err)
	}

	tx := entities.NewTransaction(userID, entities.TransactionTypeWithdrawal, entities.TransactionStatusPending).WithProvider(provider)
	tx.Amount = amount.Neg()
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	s.publishPaymentStatus(tx, false)
	return tx, nil
}

// CompleteWithdrawal marks a held withdrawal as paid out
func (s *walletService) CompleteWithdrawal(ctx context.Context, transactionID int64, providerRef string) (*entities.Transaction, error) {
	tx, err := s.getPending(ctx, transactionID, entities.TransactionTypeWithdrawal)
	if err != nil {
		return nil, err
	}

	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, entities.TransactionStatusCompleted, &providerRef); err != nil {
		return nil, fmt.Errorf("failed to complete withdrawal: %w", err)
	}
	tx.Status = entities.TransactionStatusCompleted
	tx.ProviderRef = &providerRef

	s.publishPaymentStatus(tx, false)
	return tx, nil
}

// RefundWithdrawal returns held funds and marks the withdrawal failed
func (s *walletService) RefundWithdrawal(ctx context.Context, transactionID int64, reason string) (*entities.Transaction, error) {
	tx, err := s.getPending(ctx, transactionID, entities.TransactionTypeWithdrawal)
	if err != nil {
		return nil, err
	}

	refund := tx.Amount.Abs()
	if err := s.walletRepo.AddBalance(ctx, tx.UserID, refund); err != nil {
		return nil, fmt.Errorf("failed to refund withdrawal: %w", err)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, entities.TransactionStatusFailed, nil); err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal failed: %w", err)
	}
	tx.Status = entities.TransactionStatusFailed

	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		UserID:          tx.UserID,
		TransactionID:   tx.ID,
		TransactionType: tx.Type,
		CurrencyChange:  refund,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeBalanceChange).Error("Failed to publish balance change event")
	}
	s.publishPaymentStatus(tx, false)

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"amount":         refund.StringFixed(2),
		"reason":         reason,
	}).Warn("Withdrawal refunded")
	return tx, nil
}

// FailTransaction marks a pending deposit failed. Withdrawals are refunded instead.
func (s *walletService) FailTransaction(ctx context.Context, transactionID int64, reason string) (*entities.Transaction, error) {
	tx, err := s.transactionRepo.GetByIDForUpdate(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, entities.ErrNotFound)
	}
	if tx.Type == entities.TransactionTypeWithdrawal {
		return s.RefundWithdrawal(ctx, transactionID, reason)
	}
	if tx.Status != entities.TransactionStatusPending {
		return nil, fmt.Errorf("%w: transaction %d is %s", entities.ErrInvalidState, tx.ID, tx.Status)
	}

	if err := s.transactionRepo.UpdateStatus(ctx, tx.ID, entities.TransactionStatusFailed, nil); err != nil {
		return nil, fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	tx.Status = entities.TransactionStatusFailed
	s.publishPaymentStatus(tx, false)

	log.WithFields(log.Fields{
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"reason":         reason,
	}).Warn("Transaction failed")
	return tx, nil
}

func (s *walletService) getWallet(ctx context.Context, userID int64, forUpdate bool) (*entities.Wallet, error) {
	var (
		wallet *entities.Wallet
		err    error
	)
	if forUpdate {
		wallet, err = s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	} else {
		wallet, err = s.walletRepo.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
	}
	return wallet, nil
}

func (s *walletService) getPending(ctx context.Context, transactionID int64, txType entities.TransactionType) (*entities.Transaction, error) {
	tx, err := s.transactionRepo.GetByIDForUpdate(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil || tx.Type != txType {
		return nil, fmt.Errorf("%s %d: %w", txType, transactionID, entities.ErrNotFound)
	}
	if tx.Status != entities.TransactionStatusPending {
		return nil, fmt.Errorf("%w: %s %d is %s", entities.ErrInvalidState, txType, tx.ID, tx.Status)
	}
	return tx, nil
}

func (s *walletService) publishPaymentStatus(tx *entities.Transaction, underReview bool) {
	provider := ""
	if tx.Provider != nil {
		provider = *tx.Provider
	}
	if err := s.eventPublisher.Publish(events.PaymentStatusChangeEvent{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		TxType:        tx.Type,
		Amount:        tx.Amount.Abs(),
		Provider:      provider,
		Status:        tx.Status,
		UnderReview:   underReview,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypePaymentStatusChange).Error("Failed to publish payment status change event")
	}
}
