package entities

import "time"

// GameStatus is the availability of a game
type GameStatus string

const (
	GameStatusActive      GameStatus = "active"
	GameStatusInactive    GameStatus = "inactive"
	GameStatusMaintenance GameStatus = "maintenance"
)

// IsValid reports whether the status is known
func (s GameStatus) IsValid() bool {
	return s == GameStatusActive || s == GameStatusInactive || s == GameStatusMaintenance
}

// Game is a title that wagers and tournaments are played on
type Game struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Status      GameStatus `db:"status" json:"status"`
	Popularity  int64      `db:"popularity" json:"popularity"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// IsPlayable reports whether new wagers and tournaments may use the game
func (g *Game) IsPlayable() bool {
	return g.Status == GameStatusActive
}
