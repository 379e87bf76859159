package services

import (
	"context"
	"fmt"
	"strings"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
)

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo interfaces.NotificationRepository) interfaces.NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) Notify(ctx context.Context, userID int64, notificationType entities.NotificationType, title, message string, relatedID *int64) (*entities.Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: notification title is required", entities.ErrInvalidInput)
	}

	notification := &entities.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*entities.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := s.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
