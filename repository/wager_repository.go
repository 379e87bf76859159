package repository

import (
	"context"
	"errors"
	"fmt"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const wagerColumns = `
	id, user_id, opponent_id, game_id, amount, terms, status, winner_id,
	created_at, accepted_at, completed_at
`

// WagerRepository implements wager data access
type WagerRepository struct {
	q Queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// NewWagerRepositoryScoped creates a new wager repository bound to a transaction
func NewWagerRepositoryScoped(tx Queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

// Create creates a new wager
func (r *WagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	query := `
		INSERT INTO wagers (user_id, opponent_id, game_id, amount, terms, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.UserID,
		wager.OpponentID,
		wager.GameID,
		wager.Amount,
		wager.Terms,
		wager.Status,
	).Scan(&wager.ID, &wager.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}

	return nil
}

// GetByID retrieves a wager by its ID
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	return r.get(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a wager and locks its row
func (r *WagerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Wager, error) {
	return r.get(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1 FOR UPDATE`, id)
}

func (r *WagerRepository) get(ctx context.Context, query string, id int64) (*entities.Wager, error) {
	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager %d: %w", id, err)
	}
	return wager, nil
}

// Update updates a wager's state, winner and timestamps
func (r *WagerRepository) Update(ctx context.Context, wager *entities.Wager) error {
	query := `
		UPDATE wagers
		SET status = $2,
			winner_id = $3,
			accepted_at = $4,
			completed_at = $5
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		wager.ID,
		wager.Status,
		wager.WinnerID,
		wager.AcceptedAt,
		wager.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update wager %d: %w", wager.ID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}

	return nil
}

// ListByUser returns wagers where the user is either side, newest first
func (r *WagerRepository) ListByUser(ctx context.Context, userID int64, activeOnly bool, limit int) ([]*entities.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE (user_id = $1 OR opponent_id = $1)
		  AND (NOT $2 OR status IN ('pending', 'accepted'))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, activeOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers for user %d: %w", userID, err)
	}
	defer rows.Close()

	var wagers []*entities.Wager
	for rows.Next() {
		wager, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	return wagers, rows.Err()
}

// CountByStatus counts wagers in one state
func (r *WagerRepository) CountByStatus(ctx context.Context, status entities.WagerState) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM wagers WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s wagers: %w", status, err)
	}
	return count, nil
}

func scanWager(row pgx.Row) (*entities.Wager, error) {
	var wager entities.Wager
	err := row.Scan(
		&wager.ID,
		&wager.UserID,
		&wager.OpponentID,
		&wager.GameID,
		&wager.Amount,
		&wager.Terms,
		&wager.Status,
		&wager.WinnerID,
		&wager.CreatedAt,
		&wager.AcceptedAt,
		&wager.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wager, nil
}
