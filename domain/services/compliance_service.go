package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type complianceService struct {
	complianceRepo interfaces.ComplianceRepository
	eventPublisher interfaces.EventPublisher
}

// NewComplianceService creates a new compliance service
func NewComplianceService(complianceRepo interfaces.ComplianceRepository, eventPublisher interfaces.EventPublisher) interfaces.ComplianceService {
	return &complianceService{
		complianceRepo: complianceRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *complianceService) GetSettings(ctx context.Context) (*entities.ComplianceSettings, error) {
	settings, err := s.complianceRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance settings: %w", err)
	}
	if settings == nil {
		return nil, fmt.Errorf("compliance settings: %w", entities.ErrNotFound)
	}
	return settings, nil
}

func (s *complianceService) UpdateSettings(ctx context.Context, adminID int64, settings *entities.ComplianceSettings) (*entities.ComplianceSettings, error) {
	if settings == nil {
		return nil, entities.ErrInvalidInput
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	settings.UpdatedBy = &adminID
	if err := s.complianceRepo.UpdateSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update compliance settings: %w", err)
	}

	log.WithFields(log.Fields{
		"admin_id":         adminID,
		"wagering_enabled": settings.WageringEnabled,
	}).Info("Compliance settings updated")
	return settings, nil
}

// OpenReview flags a transaction for manual review
func (s *complianceService) OpenReview(ctx context.Context, userID, transactionID int64, reason string) (*entities.ComplianceReview, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: review reason is required", entities.ErrInvalidInput)
	}

	review := &entities.ComplianceReview{
		UserID: userID,
		Reason: reason,
		Status: entities.ReviewStatusPending,
	}
	if transactionID > 0 {
		review.TransactionID = &transactionID
	}
	if err := s.complianceRepo.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to open compliance review: %w", err)
	}

	log.WithFields(log.Fields{
		"review_id":      review.ID,
		"user_id":        userID,
		"transaction_id": transactionID,
		"reason":         reason,
	}).Info("Compliance review opened")
	return review, nil
}

func (s *complianceService) GetReview(ctx context.Context, reviewID int64) (*entities.ComplianceReview, error) {
	review, err := s.complianceRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("compliance review %d: %w", reviewID, entities.ErrNotFound)
	}
	return review, nil
}

func (s *complianceService) ListReviews(ctx context.Context, status *entities.ReviewStatus, limit int) ([]*entities.ComplianceReview, error) {
	if status != nil {
		switch *status {
		case entities.ReviewStatusPending, entities.ReviewStatusApproved, entities.ReviewStatusRejected:
		default:
			return nil, fmt.Errorf("%w: unknown review status %q", entities.ErrInvalidInput, *status)
		}
	}
	reviews, err := s.complianceRepo.ListReviews(ctx, status, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance reviews: %w", err)
	}
	return reviews, nil
}

// DecideReview approves or rejects a pending review. Staff cannot decide their own reviews.
func (s *complianceService) DecideReview(ctx context.Context, reviewID, reviewerID int64, approve bool, notes string) (*entities.ComplianceReview, error) {
	review, err := s.complianceRepo.GetReviewByIDForUpdate(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance review: %w", err)
	}
	if review == nil {
		return nil, fmt.Errorf("compliance review %d: %w", reviewID, entities.ErrNotFound)
	}
	if !review.IsPending() {
		return nil, fmt.Errorf("%w: review already %s", entities.ErrInvalidState, review.Status)
	}
	if review.UserID == reviewerID {
		return nil, fmt.Errorf("%w: cannot decide a review of your own transaction", entities.ErrForbidden)
	}

	now := time.Now()
	review.Status = entities.ReviewStatusRejected
	if approve {
		review.Status = entities.ReviewStatusApproved
	}
	review.ReviewerID = &reviewerID
	review.Notes = strings.TrimSpace(notes)
	review.DecidedAt = &now
	if err := s.complianceRepo.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update compliance review: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ComplianceReviewDecidedEvent{
		ReviewID:   review.ID,
		UserID:     review.UserID,
		ReviewerID: reviewerID,
		Status:     review.Status,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeComplianceReviewDecided).Error("Failed to publish compliance review decided event")
	}
	return review, nil
}
