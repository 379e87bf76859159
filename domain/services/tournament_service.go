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

type tournamentService struct {
	tournamentRepo  interfaces.TournamentRepository
	walletRepo      interfaces.WalletRepository
	gameRepo        interfaces.GameRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
}

// NewTournamentService creates a new tournament service
func NewTournamentService(tournamentRepo interfaces.TournamentRepository, walletRepo interfaces.WalletRepository, gameRepo interfaces.GameRepository, transactionRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher) interfaces.TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		walletRepo:      walletRepo,
		gameRepo:        gameRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
	}
}

func (s *tournamentService) ListTournaments(ctx context.Context, status *entities.TournamentStatus) ([]*entities.Tournament, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown tournament status %q", entities.ErrInvalidInput, *status)
	}
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", id, entities.ErrNotFound)
	}
	return tournament, nil
}

func (s *tournamentService) GetParticipants(ctx context.Context, id int64) ([]*entities.TournamentParticipant, error) {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return nil, err
	}
	participants, err := s.tournamentRepo.GetParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

// CreateTournament schedules a new upcoming tournament
func (s *tournamentService) CreateTournament(ctx context.Context, creatorID int64, params interfaces.CreateTournamentParams) (*entities.Tournament, error) {
	name := strings.TrimSpace(params.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: tournament name is required", entities.ErrInvalidInput)
	case !params.StartDate.Before(params.EndDate):
		return nil, fmt.Errorf("%w: start date must be before end date", entities.ErrInvalidInput)
	case params.MaxParticipants < 2:
		return nil, fmt.Errorf("%w: a tournament needs at least 2 participants", entities.ErrInvalidInput)
	case params.EntryFee < 0:
		return nil, fmt.Errorf("%w: entry fee cannot be negative", entities.ErrInvalidAmount)
	}

	game, err := s.gameRepo.GetByID(ctx, params.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", params.GameID, entities.ErrNotFound)
	}
	if !game.IsPlayable() {
		return nil, fmt.Errorf("%w: game %s is %s", entities.ErrInvalidInput, game.Name, game.Status)
	}

	tournament := &entities.Tournament{
		Name:            name,
		GameID:          params.GameID,
		StartDate:       params.StartDate.UTC(),
		EndDate:         params.EndDate.UTC(),
		Status:          entities.TournamentStatusUpcoming,
		MaxParticipants: params.MaxParticipants,
		EntryFee:        params.EntryFee,
		CreatedBy:       &creatorID,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if err := s.gameRepo.IncrementPopularity(ctx, params.GameID); err != nil {
		return nil, fmt.Errorf("failed to update game popularity: %w", err)
	}

	log.WithFields(log.Fields{
		"tournament_id": tournament.ID,
		"name":          tournament.Name,
		"created_by":    creatorID,
	}).Info("Tournament created")

	return tournament, nil
}

// JoinTournament charges the entry fee into the prize pool and takes a seat
func (s *tournamentService) JoinTournament(ctx context.Context, tournamentID, userID int64) (*entities.Tournament, error) {
	tournament, err := s.lockTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	joined, err := s.tournamentRepo.IsParticipant(ctx, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if joined {
		return nil, entities.ErrAlreadyJoined
	}
	if tournament.IsFull() {
		return nil, entities.ErrTournamentFull
	}
	if !tournament.IsJoinable(time.Now()) {
		return nil, fmt.Errorf("%w: tournament is %s and no longer open for entries", entities.ErrInvalidState, tournament.Status)
	}

	if tournament.EntryFee > 0 {
		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet: %w", err)
		}
		if wallet == nil {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
		}
		if !wallet.CanAffordTokens(tournament.EntryFee) {
			return nil, fmt.Errorf("%w: have %d available, entry fee is %d", entities.ErrInsufficientTokens, wallet.AvailableTokens, tournament.EntryFee)
		}
		if err := s.walletRepo.DeductTokens(ctx, userID, tournament.EntryFee); err != nil {
			return nil, fmt.Errorf("failed to charge entry fee: %w", err)
		}
	}

	if err := s.tournamentRepo.AddParticipant(ctx, tournamentID, userID); err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	tournament.CurrentParticipants++
	tournament.PrizePool += tournament.EntryFee
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	if tournament.EntryFee > 0 {
		tx := entities.NewTransaction(userID, entities.TransactionTypeTournamentEntry, entities.TransactionStatusCompleted).
			WithRelated(entities.RelatedTypeTournament, tournament.ID)
		tx.TokenAmount = -tournament.EntryFee
		if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.TournamentJoinedEvent{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		UserID:       userID,
		EntryFee:     tournament.EntryFee,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeTournamentJoined).Error("Failed to publish tournament joined event")
	}

	return tournament, nil
}

// AdvanceStatuses moves every tournament whose schedule has passed to its next status
func (s *tournamentService) AdvanceStatuses(ctx context.Context, now time.Time) (int, error) {
	due, err := s.tournamentRepo.ListDueForTransition(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due tournaments: %w", err)
	}

	changed := 0
	for _, tournament := range due {
		next := tournament.NextStatus(now)
		if next == tournament.Status {
			continue
		}

		old := tournament.Status
		tournament.Status = next
		if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
			return changed, fmt.Errorf("failed to advance tournament %d: %w", tournament.ID, err)
		}
		changed++

		if err := s.eventPublisher.Publish(events.TournamentStatusChangeEvent{
			TournamentID: tournament.ID,
			OldStatus:    old,
			NewStatus:    next,
		}); err != nil {
			log.WithError(err).WithField("event_type", events.EventTypeTournamentStatusChange).Error("Failed to publish tournament status change event")
		}

		log.WithFields(log.Fields{
			"tournament_id": tournament.ID,
			"from":          old,
			"to":            next,
		}).Info("Tournament status advanced")
	}
	return changed, nil
}

// SettleTournament pays the whole prize pool to the winner
func (s *tournamentService) SettleTournament(ctx context.Context, tournamentID, winnerID int64) (*entities.Tournament, error) {
	tournament, err := s.lockTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.IsSettled() {
		return nil, fmt.Errorf("%w: tournament already settled", entities.ErrInvalidState)
	}
	if tournament.Status != entities.TournamentStatusActive && tournament.Status != entities.TournamentStatusCompleted {
		return nil, fmt.Errorf("%w: cannot settle a tournament that is %s", entities.ErrInvalidState, tournament.Status)
	}

	isParticipant, err := s.tournamentRepo.IsParticipant(ctx, tournamentID, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if !isParticipant {
		return nil, fmt.Errorf("%w: winner must be a participant", entities.ErrInvalidInput)
	}

	if tournament.PrizePool > 0 {
		if err := s.walletRepo.AddTokens(ctx, winnerID, tournament.PrizePool); err != nil {
			return nil, fmt.Errorf("failed to pay prize: %w", err)
		}
	}

	tournament.Status = entities.TournamentStatusCompleted
	tournament.WinnerID = &winnerID
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	if tournament.PrizePool > 0 {
		tx := entities.NewTransaction(winnerID, entities.TransactionTypeTournamentPrize, entities.TransactionStatusCompleted).
			WithRelated(entities.RelatedTypeTournament, tournament.ID)
		tx.TokenAmount = tournament.PrizePool
		if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.TournamentSettledEvent{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		WinnerID:     winnerID,
		Prize:        tournament.PrizePool,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeTournamentSettled).Error("Failed to publish tournament settled event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournament.ID,
		"winner_id":     winnerID,
		"prize":         tournament.PrizePool,
	}).Info("Tournament settled")

	return tournament, nil
}

// CancelTournament refunds every entry fee and closes the tournament
func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID int64) (*entities.Tournament, error) {
	tournament, err := s.lockTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.IsSettled() || tournament.Status == entities.TournamentStatusCancelled {
		return nil, fmt.Errorf("%w: tournament is %s", entities.ErrInvalidState, tournament.Status)
	}

	if tournament.EntryFee > 0 {
		participants, err := s.tournamentRepo.GetParticipants(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants: %w", err)
		}
		for _, p := range participants {
			if err := s.walletRepo.AddTokens(ctx, p.UserID, tournament.EntryFee); err != nil {
				return nil, fmt.Errorf("failed to refund user %d: %w", p.UserID, err)
			}
			tx := entities.NewTransaction(p.UserID, entities.TransactionTypeTournamentRefund, entities.TransactionStatusCompleted).
				WithRelated(entities.RelatedTypeTournament, tournament.ID)
			tx.TokenAmount = tournament.EntryFee
			if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, tx); err != nil {
				return nil, err
			}
		}
	}

	old := tournament.Status
	tournament.Status = entities.TournamentStatusCancelled
	tournament.PrizePool = 0
	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TournamentStatusChangeEvent{
		TournamentID: tournament.ID,
		OldStatus:    old,
		NewStatus:    tournament.Status,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeTournamentStatusChange).Error("Failed to publish tournament status change event")
	}

	log.WithFields(log.Fields{
		"tournament_id": tournament.ID,
		"participants":  tournament.CurrentParticipants,
	}).Warn("Tournament cancelled and entry fees refunded")

	return tournament, nil
}

func (s *tournamentService) lockTournament(ctx context.Context, id int64) (*entities.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", id, entities.ErrNotFound)
	}
	return tournament, nil
}
