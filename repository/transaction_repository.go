package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `
	id, user_id, type, amount, token_amount, status, provider, provider_ref,
	reference, related_id, related_type, metadata, created_at, updated_at
`

// TransactionRepository implements the wallet ledger
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// NewTransactionRepositoryScoped creates a new transaction repository bound to a transaction
func NewTransactionRepositoryScoped(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create records a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	metadata := tx.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (
			user_id, type, amount, token_amount, status, provider, provider_ref,
			reference, related_id, related_type, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err = r.q.QueryRow(ctx, query,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.TokenAmount,
		tx.Status,
		tx.Provider,
		tx.ProviderRef,
		tx.Reference,
		tx.RelatedID,
		tx.RelatedType,
		metadataJSON,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s transaction: %w", tx.Type, err)
	}

	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a transaction and locks its row
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Transaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepository) get(ctx context.Context, query string, id int64) (*entities.Transaction, error) {
	tx, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return tx, nil
}

// UpdateStatus moves a transaction to a new status, keeping any earlier provider reference
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status entities.TransactionStatus, providerRef *string) error {
	query := `
		UPDATE transactions
		SET status = $2,
			provider_ref = COALESCE($3, provider_ref),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, status, providerRef)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// ListByUser returns a user's ledger, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*entities.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// SumAmountSince totals pending and completed amounts of a type for one user
func (r *TransactionRepository) SumAmountSince(ctx context.Context, userID int64, txType entities.TransactionType, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		  AND type = $2
		  AND status IN ('pending', 'completed')
		  AND created_at >= $3
	`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, userID, txType, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions for user %d: %w", txType, userID, err)
	}
	return total, nil
}

// SumCompletedAmount totals completed amounts of a type across all users
func (r *TransactionRepository) SumCompletedAmount(ctx context.Context, txType entities.TransactionType) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = $1 AND status = 'completed'`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, txType).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions: %w", txType, err)
	}
	return total, nil
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var tx entities.Transaction
	var metadataJSON []byte
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Type,
		&tx.Amount,
		&tx.TokenAmount,
		&tx.Status,
		&tx.Provider,
		&tx.ProviderRef,
		&tx.Reference,
		&tx.RelatedID,
		&tx.RelatedType,
		&metadataJSON,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &tx, nil
}
