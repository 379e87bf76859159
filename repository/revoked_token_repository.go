package repository

import (
	"context"
	"fmt"
	"time"

	"wagerhub/database"
)

// RevokedTokenRepository tracks logged out bearer tokens
type RevokedTokenRepository struct {
	q Queryable
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(db *database.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{q: db.Pool}
}

// NewRevokedTokenRepositoryScoped creates a new revoked token repository bound to a transaction
func NewRevokedTokenRepositoryScoped(tx Queryable) *RevokedTokenRepository {
	return &RevokedTokenRepository{q: tx}
}

// Revoke records a token ID; revoking twice is a no-op
func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, tokenID, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token ID was revoked
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes revocations of tokens that expired before the cutoff
func (r *RevokedTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
