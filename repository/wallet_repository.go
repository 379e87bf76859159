package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// walletSelect computes available tokens as the token balance minus stakes:
// wagers the user offered that are still open, and accepted wagers they were challenged to
const walletSelect = `
	SELECT
		w.id,
		w.user_id,
		w.balance,
		w.token_balance,
		w.token_balance - COALESCE(
			(SELECT SUM(wg.amount)
			 FROM wagers wg
			 WHERE (wg.user_id = w.user_id AND wg.status IN ('pending', 'accepted'))
			    OR (wg.opponent_id = w.user_id AND wg.status = 'accepted')),
			0
		)::BIGINT AS available_tokens,
		w.created_at,
		w.updated_at
	FROM wallets w
	WHERE w.user_id = $1
`

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// NewWalletRepositoryScoped creates a new wallet repository bound to a transaction
func NewWalletRepositoryScoped(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Create opens an empty wallet for a user
func (r *WalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		RETURNING id, user_id, balance, token_balance, created_at, updated_at
	`

	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.TokenBalance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}
	wallet.AvailableTokens = wallet.TokenBalance

	return &wallet, nil
}

// GetByUserID returns the wallet with available tokens populated
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.get(ctx, walletSelect, userID)
}

// GetByUserIDForUpdate locks the wallet row until the transaction ends. Available
// tokens are read in a second statement so stakes committed while this one waited
// for the lock are counted.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	if err := r.LockWallets(ctx, userID); err != nil {
		return nil, err
	}
	return r.get(ctx, walletSelect, userID)
}

// LockWallets locks the wallet rows of the given users in user ID order
func (r *WalletRepository) LockWallets(ctx context.Context, userIDs ...int64) error {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	query := `SELECT id FROM wallets WHERE user_id = ANY($1) ORDER BY user_id FOR UPDATE`
	if _, err := r.q.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to lock wallets %v: %w", ids, err)
	}
	return nil
}

func (r *WalletRepository) get(ctx context.Context, query string, userID int64) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.TokenBalance,
		&wallet.AvailableTokens,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// AddBalance credits currency
func (r *WalletRepository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// DeductBalance debits currency only when the balance covers it
func (r *WalletRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	query := `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`

	result, err := r.q.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit balance for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrInsufficientBalance
	}
	return nil
}

// AddTokens credits tokens
func (r *WalletRepository) AddTokens(ctx context.Context, userID int64, tokens int64) error {
	query := `UPDATE wallets SET token_balance = token_balance + $2, updated_at = NOW() WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, userID, tokens)
	if err != nil {
		return fmt.Errorf("failed to credit tokens for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// DeductTokens debits tokens only when the token balance covers it.
// Staked tokens count here so a settled wager can take the loser's stake.
func (r *WalletRepository) DeductTokens(ctx context.Context, userID int64, tokens int64) error {
	query := `
		UPDATE wallets SET token_balance = token_balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND token_balance >= $2
	`

	result, err := r.q.Exec(ctx, query, userID, tokens)
	if err != nil {
		return fmt.Errorf("failed to debit tokens for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrInsufficientTokens
	}
	return nil
}

// TotalTokens returns the sum of all token balances
func (r *WalletRepository) TotalTokens(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(token_balance), 0)::BIGINT FROM wallets`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum token balances: %w", err)
	}
	return total, nil
}
