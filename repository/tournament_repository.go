package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wagerhub/database"
	"wagerhub/domain/entities"

	"github.com/jackc/pgx/v5"
)

const tournamentColumns = `
	id, name, game_id, start_date, end_date, status, max_participants,
	current_participants, entry_fee, prize_pool, winner_id, created_by,
	created_at, updated_at
`

// TournamentRepository implements the TournamentRepository interface
type TournamentRepository struct {
	q Queryable
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *database.DB) *TournamentRepository {
	return &TournamentRepository{q: db.Pool}
}

// NewTournamentRepositoryScoped creates a new tournament repository bound to a transaction
func NewTournamentRepositoryScoped(tx Queryable) *TournamentRepository {
	return &TournamentRepository{q: tx}
}

// Create inserts a new tournament
func (r *TournamentRepository) Create(ctx context.Context, t *entities.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, game_id, start_date, end_date, status, max_participants,
			current_participants, entry_fee, prize_pool, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		t.Name,
		t.GameID,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.MaxParticipants,
		t.CurrentParticipants,
		t.EntryFee,
		t.PrizePool,
		t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

// GetByID retrieves a tournament by ID
func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (*entities.Tournament, error) {
	return r.get(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

// GetByIDForUpdate locks the tournament row until the transaction ends
func (r *TournamentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Tournament, error) {
	return r.get(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *TournamentRepository) get(ctx context.Context, query string, id int64) (*entities.Tournament, error) {
	t, err := scanTournament(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

// List returns tournaments ordered by start date
func (r *TournamentRepository) List(ctx context.Context, status *entities.TournamentStatus) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE ($1::TEXT IS NULL OR status = $1)
		ORDER BY start_date, id
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	return r.list(ctx, query, statusArg)
}

// Update persists the mutable tournament fields
func (r *TournamentRepository) Update(ctx context.Context, t *entities.Tournament) error {
	query := `
		UPDATE tournaments
		SET status = $2,
			current_participants = $3,
			prize_pool = $4,
			winner_id = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, t.ID, t.Status, t.CurrentParticipants, t.PrizePool, t.WinnerID).
		Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return nil
}

// AddParticipant enters a user into a tournament
func (r *TournamentRepository) AddParticipant(ctx context.Context, tournamentID, userID int64) error {
	query := `INSERT INTO tournament_participants (tournament_id, user_id) VALUES ($1, $2)`

	_, err := r.q.Exec(ctx, query, tournamentID, userID)
	if isUniqueViolation(err, "tournament_participants_pkey") {
		return entities.ErrAlreadyJoined
	}
	if err != nil {
		return fmt.Errorf("failed to add user %d to tournament %d: %w", userID, tournamentID, err)
	}
	return nil
}

// IsParticipant reports whether the user entered the tournament
func (r *TournamentRepository) IsParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, tournamentID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// GetParticipants returns entries in join order
func (r *TournamentRepository) GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error) {
	query := `
		SELECT tournament_id, user_id, joined_at
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY joined_at, user_id
	`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var participants []*entities.TournamentParticipant
	for rows.Next() {
		var p entities.TournamentParticipant
		if err := rows.Scan(&p.TournamentID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	return participants, rows.Err()
}

// ListByParticipant returns the upcoming and active tournaments a user entered
func (r *TournamentRepository) ListByParticipant(ctx context.Context, userID int64) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + prefixColumns("t", tournamentColumns) + `
		FROM tournaments t
		JOIN tournament_participants tp ON tp.tournament_id = t.id
		WHERE tp.user_id = $1 AND t.status IN ('upcoming', 'active')
		ORDER BY t.start_date, t.id
	`
	return r.list(ctx, query, userID)
}

// ListDueForTransition returns open tournaments whose start or end has passed
func (r *TournamentRepository) ListDueForTransition(ctx context.Context, now time.Time) ([]*entities.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE (status = 'upcoming' AND start_date <= $1)
		   OR (status = 'active' AND end_date <= $1)
		ORDER BY start_date, id
	`
	return r.list(ctx, query, now)
}

// CountByStatus counts tournaments in one status
func (r *TournamentRepository) CountByStatus(ctx context.Context, status entities.TournamentStatus) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tournaments WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s tournaments: %w", status, err)
	}
	return count, nil
}

func (r *TournamentRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Tournament, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*entities.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func scanTournament(row pgx.Row) (*entities.Tournament, error) {
	var t entities.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.GameID,
		&t.StartDate,
		&t.EndDate,
		&t.Status,
		&t.MaxParticipants,
		&t.CurrentParticipants,
		&t.EntryFee,
		&t.PrizePool,
		&t.WinnerID,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
