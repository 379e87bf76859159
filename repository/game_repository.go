package repository

import (
	"context"
	"errors"
	"fmt"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const gameColumns = `id, name, description, status, popularity, created_at`

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q Queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// NewGameRepositoryScoped creates a new game repository bound to a transaction
func NewGameRepositoryScoped(tx Queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Create adds a game to the catalogue
func (r *GameRepository) Create(ctx context.Context, game *entities.Game) error {
	query := `
		INSERT INTO games (name, description, status)
		VALUES ($1, $2, $3)
		RETURNING id, popularity, created_at
	`

	err := r.q.QueryRow(ctx, query, game.Name, game.Description, game.Status).
		Scan(&game.ID, &game.Popularity, &game.CreatedAt)
	if isUniqueViolation(err, "idx_games_name") {
		return fmt.Errorf("%w: game %q already exists", entities.ErrInvalidInput, game.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game by ID
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*entities.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	return game, nil
}

// List returns games ordered by popularity
func (r *GameRepository) List(ctx context.Context, status *entities.GameStatus) ([]*entities.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE ($1::TEXT IS NULL OR status = $1)
		ORDER BY popularity DESC, name
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	return r.list(ctx, query, statusArg)
}

// UpdateStatus changes a game's availability
func (r *GameRepository) UpdateStatus(ctx context.Context, id int64, status entities.GameStatus) error {
	result, err := r.q.Exec(ctx, `UPDATE games SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of game %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// IncrementPopularity counts one more wager or tournament on the game
func (r *GameRepository) IncrementPopularity(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `UPDATE games SET popularity = popularity + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment popularity of game %d: %w", id, err)
	}
	return nil
}

// TopByPopularity returns the most played games
func (r *GameRepository) TopByPopularity(ctx context.Context, limit int) ([]*entities.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		ORDER BY popularity DESC, name
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *GameRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Game, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*entities.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*entities.Game, error) {
	var game entities.Game
	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.Description,
		&game.Status,
		&game.Popularity,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
