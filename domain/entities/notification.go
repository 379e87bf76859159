package entities

import "time"

// NotificationType categorises a notification
type NotificationType string

const (
	NotificationWagerReceived   NotificationType = "wager_received"
	NotificationWagerAccepted   NotificationType = "wager_accepted"
	NotificationWagerDeclined   NotificationType = "wager_declined"
	NotificationWagerCompleted  NotificationType = "wager_completed"
	NotificationTournamentEntry NotificationType = "tournament_joined"
	NotificationTournamentPrize NotificationType = "tournament_prize"
	NotificationDeposit         NotificationType = "deposit"
	NotificationWithdrawal      NotificationType = "withdrawal"
	NotificationReview          NotificationType = "compliance_review"
	NotificationSubscription    NotificationType = "subscription"
)

// Notification is an in-app message for a user
type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	RelatedID *int64           `db:"related_id" json:"relatedId,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}
