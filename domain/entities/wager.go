package entities

import "time"

// WagerState is the lifecycle state of a peer-to-peer wager
type WagerState string

const (
	WagerStatePending   WagerState = "pending"
	WagerStateAccepted  WagerState = "accepted"
	WagerStateCompleted WagerState = "completed"
	WagerStateCancelled WagerState = "cancelled"
	WagerStateDeclined  WagerState = "declined"
)

// Wager is a two-party token stake on the outcome of a game
type Wager struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	OpponentID  int64      `db:"opponent_id" json:"opponentId"`
	GameID      int64      `db:"game_id" json:"gameId"`
	Amount      int64      `db:"amount" json:"amount"`
	Terms       string     `db:"terms" json:"terms"`
	Status      WagerState `db:"status" json:"status"`
	WinnerID    *int64     `db:"winner_id" json:"winnerId,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	AcceptedAt  *time.Time `db:"accepted_at" json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// IsParticipant checks if a user is the creator or the opponent
func (w *Wager) IsParticipant(userID int64) bool {
	return w.UserID == userID || w.OpponentID == userID
}

// GetOpponent returns the other participant, or 0 if the user is not part of the wager
func (w *Wager) GetOpponent(userID int64) int64 {
	switch userID {
	case w.UserID:
		return w.OpponentID
	case w.OpponentID:
		return w.UserID
	}
	return 0
}

// IsActive reports whether tokens are still staked on the wager
func (w *Wager) IsActive() bool {
	return w.Status == WagerStatePending || w.Status == WagerStateAccepted
}

// CanBeAccepted: only the opponent, only while pending
func (w *Wager) CanBeAccepted(userID int64) bool {
	return w.Status == WagerStatePending && w.OpponentID == userID
}

// CanBeDeclined: only the opponent, only while pending
func (w *Wager) CanBeDeclined(userID int64) bool {
	return w.Status == WagerStatePending && w.OpponentID == userID
}

// CanBeCancelled: only the creator, only while pending
func (w *Wager) CanBeCancelled(userID int64) bool {
	return w.Status == WagerStatePending && w.UserID == userID
}

// CanBeCompleted: either participant, only once accepted
func (w *Wager) CanBeCompleted(userID int64) bool {
	return w.Status == WagerStateAccepted && w.IsParticipant(userID)
}
