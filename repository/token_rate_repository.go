package repository

import (
	"context"
	"errors"
	"fmt"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TokenRateRepository stores the history of admin-set token values
type TokenRateRepository struct {
	q Queryable
}

// NewTokenRateRepository creates a new token rate repository
func NewTokenRateRepository(db *database.DB) *TokenRateRepository {
	return &TokenRateRepository{q: db.Pool}
}

// NewTokenRateRepositoryScoped creates a new token rate repository bound to a transaction
func NewTokenRateRepositoryScoped(tx Queryable) *TokenRateRepository {
	return &TokenRateRepository{q: tx}
}

// GetCurrent returns the most recently set rate
func (r *TokenRateRepository) GetCurrent(ctx context.Context) (*entities.TokenRate, error) {
	query := `
		SELECT id, rate, set_by, created_at
		FROM token_rates
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var rate entities.TokenRate
	err := r.q.QueryRow(ctx, query).Scan(&rate.ID, &rate.Rate, &rate.SetBy, &rate.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current token rate: %w", err)
	}
	return &rate, nil
}

// Create appends a new rate to the history
func (r *TokenRateRepository) Create(ctx context.Context, rate *entities.TokenRate) error {
	query := `
		INSERT INTO token_rates (rate, set_by)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.q.QueryRow(ctx, query, rate.Rate, rate.SetBy).Scan(&rate.ID, &rate.CreatedAt); err != nil {
		return fmt.Errorf("failed to create token rate: %w", err)
	}
	return nil
}

// List returns the rate history, newest first
func (r *TokenRateRepository) List(ctx context.Context, limit int) ([]*entities.TokenRate, error) {
	query := `
		SELECT id, rate, set_by, created_at
		FROM token_rates
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list token rates: %w", err)
	}
	defer rows.Close()

	var rates []*entities.TokenRate
	for rows.Next() {
		var rate entities.TokenRate
		if err := rows.Scan(&rate.ID, &rate.Rate, &rate.SetBy, &rate.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token rate: %w", err)
		}
		rates = append(rates, &rate)
	}
	return rates, rows.Err()
}
