package entities

import "time"

// TournamentStatus is the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// IsValid reports whether the status is known
func (s TournamentStatus) IsValid() bool {
	switch s {
	case TournamentStatusUpcoming, TournamentStatusActive, TournamentStatusCompleted, TournamentStatusCancelled:
		return true
	}
	return false
}

// Tournament is a scheduled competition with a token entry fee and prize pool
type Tournament struct {
	ID                  int64            `db:"id" json:"id"`
	Name                string           `db:"name" json:"name"`
	GameID              int64            `db:"game_id" json:"gameId"`
	StartDate           time.Time        `db:"start_date" json:"startDate"`
	EndDate             time.Time        `db:"end_date" json:"endDate"`
	Status              TournamentStatus `db:"status" json:"status"`
	MaxParticipants     int              `db:"max_participants" json:"maxParticipants"`
	CurrentParticipants int              `db:"current_participants" json:"currentParticipants"`
	EntryFee            int64            `db:"entry_fee" json:"entryFee"`
	PrizePool           int64            `db:"prize_pool" json:"prizePool"`
	WinnerID            *int64           `db:"winner_id" json:"winnerId,omitempty"`
	CreatedBy           *int64           `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt           time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updatedAt"`
}

// TournamentParticipant links a user to a tournament
type TournamentParticipant struct {
	TournamentID int64     `db:"tournament_id" json:"tournamentId"`
	UserID       int64     `db:"user_id" json:"userId"`
	JoinedAt     time.Time `db:"joined_at" json:"joinedAt"`
}

// IsFull reports whether every seat is taken
func (t *Tournament) IsFull() bool {
	return t.CurrentParticipants >= t.MaxParticipants
}

// IsJoinable reports whether a new participant may enter at the given time
func (t *Tournament) IsJoinable(now time.Time) bool {
	return t.Status == TournamentStatusUpcoming && !t.IsFull() && now.Before(t.StartDate)
}

// NextStatus returns the status the schedule implies at the given time.
// Completed and cancelled tournaments never move.
func (t *Tournament) NextStatus(now time.Time) TournamentStatus {
	switch t.Status {
	case TournamentStatusUpcoming:
		if !now.Before(t.EndDate) {
			return TournamentStatusCompleted
		}
		if !now.Before(t.StartDate) {
			return TournamentStatusActive
		}
	case TournamentStatusActive:
		if !now.Before(t.EndDate) {
			return TournamentStatusCompleted
		}
	}
	return t.Status
}

// IsSettled reports whether the prize pool has been paid out
func (t *Tournament) IsSettled() bool {
	return t.WinnerID != nil
}
