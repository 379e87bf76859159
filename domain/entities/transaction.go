package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry against a user's wallet.
// Amount is the currency side of the movement and TokenAmount the token side;
// either may be zero. Signs follow the direction of the change.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`
	UserID      int64             `db:"user_id" json:"userId"`
	Type        TransactionType   `db:"type" json:"type"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	TokenAmount int64             `db:"token_amount" json:"tokenAmount"`
	Status      TransactionStatus `db:"status" json:"status"`
	Provider    *string           `db:"provider" json:"provider,omitempty"`
	ProviderRef *string           `db:"provider_ref" json:"providerRef,omitempty"`
	Reference   uuid.UUID         `db:"reference" json:"reference"`
	RelatedID   *int64            `db:"related_id" json:"relatedId,omitempty"`
	RelatedType *RelatedType      `db:"related_type" json:"relatedType,omitempty"`
	Metadata    map[string]any    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

// NewTransaction builds a transaction with a fresh reference
func NewTransaction(userID int64, txType TransactionType, status TransactionStatus) *Transaction {
	return &Transaction{
		UserID:    userID,
		Type:      txType,
		Status:    status,
		Amount:    decimal.Zero,
		Reference: uuid.New(),
		Metadata:  map[string]any{},
	}
}

// WithRelated links the transaction to another record
func (t *Transaction) WithRelated(relatedType RelatedType, id int64) *Transaction {
	t.RelatedType = &relatedType
	t.RelatedID = &id
	return t
}

// WithProvider records the payment processor handling the transaction
func (t *Transaction) WithProvider(provider string) *Transaction {
	t.Provider = &provider
	return t
}
