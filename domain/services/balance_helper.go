package services

import (
	"context"
	"fmt"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordTransaction records a ledger entry and emits a balance change event.
// Every wallet movement goes through here so the ledger and event stream stay in step.
func RecordTransaction(ctx context.Context, txRepo interfaces.TransactionRepository, publisher interfaces.EventPublisher, tx *entities.Transaction) error {
	if err := txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	// Pending transactions haven't moved completed funds yet, except withdrawal holds
	if tx.Status == entities.TransactionStatusCompleted || tx.Type == entities.TransactionTypeWithdrawal {
		publishBalanceChange(publisher, tx)
	}
	return nil
}

func publishBalanceChange(publisher interfaces.EventPublisher, tx *entities.Transaction) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(events.BalanceChangeEvent{
		UserID:          tx.UserID,
		TransactionID:   tx.ID,
		TransactionType: tx.Type,
		CurrencyChange:  tx.Amount,
		TokenChange:     tx.TokenAmount,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeBalanceChange).Error("Failed to publish balance change event")
	}
}
