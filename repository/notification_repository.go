package repository

import (
	"context"
	"fmt"

	"wagerhub/database"
	"wagerhub/domain/entities"
)

// NotificationRepository implements in-app notification storage
type NotificationRepository struct {
	q Queryable
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db.Pool}
}

// NewNotificationRepositoryScoped creates a new notification repository bound to a transaction
func NewNotificationRepositoryScoped(tx Queryable) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at
	`

	err := r.q.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Message, n.RelatedID).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification for user %d: %w", n.UserID, err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*entities.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, related_id, read, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT read)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var notifications []*entities.Notification
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.RelatedID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	result, err := r.q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}
	return result.RowsAffected(), nil
}

// CountUnread counts unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %d: %w", userID, err)
	}
	return count, nil
}
