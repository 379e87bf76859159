package services

import (
	"context"
	"fmt"

	"wagerhub/config"
	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type tokenRateService struct {
	rateRepo       interfaces.TokenRateRepository
	cache          interfaces.TokenRateCache
	eventPublisher interfaces.EventPublisher
}

// NewTokenRateService creates a new token rate service. The cache may be nil.
func NewTokenRateService(rateRepo interfaces.TokenRateRepository, cache interfaces.TokenRateCache, eventPublisher interfaces.EventPublisher) interfaces.TokenRateService {
	return &tokenRateService{
		rateRepo:       rateRepo,
		cache:          cache,
		eventPublisher: eventPublisher,
	}
}

// GetCurrentRate returns the cached rate, the latest stored rate, or the configured default
func (s *tokenRateService) GetCurrentRate(ctx context.Context) (*entities.TokenRate, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			log.WithError(err).Warn("Token rate cache read failed, falling back to database")
		} else if cached != nil {
			return cached, nil
		}
	}

	rate, err := s.rateRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token value: %w", err)
	}
	if rate == nil {
		rate = &entities.TokenRate{Rate: config.Get().DefaultTokenRate}
	}

	// Never overwrite: this read may predate a rate committed since
	if s.cache != nil {
		if err := s.cache.SetIfAbsent(ctx, rate); err != nil {
			log.WithError(err).Warn("Failed to cache token rate")
		}
	}
	return rate, nil
}

// SetRate stores a new token value. The caller refreshes the cache once the
// unit of work commits.
func (s *tokenRateService) SetRate(ctx context.Context, adminID int64, rate decimal.Decimal) (*entities.TokenRate, error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: token rate must be positive", entities.ErrInvalidAmount)
	}

	previous, err := s.rateRepo.GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token value: %w", err)
	}
	oldRate := config.Get().DefaultTokenRate
	if previous != nil {
		oldRate = previous.Rate
	}

	newRate := &entities.TokenRate{Rate: rate, SetBy: &adminID}
	if err := s.rateRepo.Create(ctx, newRate); err != nil {
		return nil, fmt.Errorf("failed to store token rate: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TokenRateChangedEvent{
		OldRate: oldRate,
		NewRate: rate,
		SetBy:   adminID,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeTokenRateChanged).Error("Failed to publish token rate changed event")
	}

	log.WithFields(log.Fields{
		"old_rate": oldRate.String(),
		"new_rate": rate.String(),
		"admin_id": adminID,
	}).Info("Token rate updated")

	return newRate, nil
}

// History lists previous rates, newest first
func (s *tokenRateService) History(ctx context.Context, limit int) ([]*entities.TokenRate, error) {
	rates, err := s.rateRepo.List(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list token rates: %w", err)
	}
	return rates, nil
}

// normalizeLimit clamps list sizes to [1, 100] with a default of 50
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 100:
		return 100
	}
	return limit
}
