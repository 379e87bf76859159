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

const maxTermsLength = 500

type wagerService struct {
	wagerRepo       interfaces.WagerRepository
	walletRepo      interfaces.WalletRepository
	gameRepo        interfaces.GameRepository
	transactionRepo interfaces.TransactionRepository
	complianceRepo  interfaces.ComplianceRepository
	eventPublisher  interfaces.EventPublisher
}

// NewWagerService creates a new wager service
func NewWagerService(wagerRepo interfaces.WagerRepository, walletRepo interfaces.WalletRepository, gameRepo interfaces.GameRepository, transactionRepo interfaces.TransactionRepository, complianceRepo interfaces.ComplianceRepository, eventPublisher interfaces.EventPublisher) interfaces.WagerService {
	return &wagerService{
		wagerRepo:       wagerRepo,
		walletRepo:      walletRepo,
		gameRepo:        gameRepo,
		transactionRepo: transactionRepo,
		complianceRepo:  complianceRepo,
		eventPublisher:  eventPublisher,
	}
}

// CreateWager offers a token wager to an opponent
func (s *wagerService) CreateWager(ctx context.Context, userID, opponentID, gameID, amount int64, terms string) (*entities.Wager, error) {
	// Validate inputs
	if userID == opponentID {
		return nil, entities.ErrSelfWager
	}
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}
	terms = strings.TrimSpace(terms)
	if len(terms) > maxTermsLength {
		return nil, fmt.Errorf("%w: terms cannot exceed %d characters", entities.ErrInvalidInput, maxTermsLength)
	}

	settings, err := s.complianceRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance settings: %w", err)
	}
	if err := settings.CheckWager(amount); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, entities.ErrNotFound)
	}
	if !game.IsPlayable() {
		return nil, fmt.Errorf("%w: game %s is %s", entities.ErrInvalidInput, game.Name, game.Status)
	}

	// Opponent must exist; their balance is checked when they accept
	opponentWallet, err := s.walletRepo.GetByUserID(ctx, opponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent wallet: %w", err)
	}
	if opponentWallet == nil {
		return nil, fmt.Errorf("opponent %d: %w", opponentID, entities.ErrNotFound)
	}

	// Lock the creator's wallet so two wagers can't stake the same tokens
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
	}
	if !wallet.CanAffordTokens(amount) {
		return nil, fmt.Errorf("%w: have %d available, need %d", entities.ErrInsufficientTokens, wallet.AvailableTokens, amount)
	}

	wager := &entities.Wager{
		UserID:     userID,
		OpponentID: opponentID,
		GameID:     gameID,
		Amount:     amount,
		Terms:      terms,
		Status:     entities.WagerStatePending,
	}
	if err := s.wagerRepo.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to create wager: %w", err)
	}

	if err := s.gameRepo.IncrementPopularity(ctx, gameID); err != nil {
		return nil, fmt.Errorf("failed to update game popularity: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WagerCreatedEvent{
		WagerID:    wager.ID,
		UserID:     userID,
		OpponentID: opponentID,
		GameID:     gameID,
		Amount:     amount,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeWagerCreated).Error("Failed to publish wager created event")
	}

	log.WithFields(log.Fields{
		"wager_id":    wager.ID,
		"user_id":     userID,
		"opponent_id": opponentID,
		"amount":      amount,
	}).Info("Wager created")

	return wager, nil
}

// AcceptWager stakes the opponent's tokens and moves the wager to accepted
func (s *wagerService) AcceptWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error) {
	wager, err := s.lockWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if !wager.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: only the challenged user can accept this wager", entities.ErrForbidden)
	}
	if !wager.CanBeAccepted(userID) {
		return nil, fmt.Errorf("%w: wager is %s", entities.ErrInvalidState, wager.Status)
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, entities.ErrNotFound)
	}
	if !wallet.CanAffordTokens(wager.Amount) {
		return nil, fmt.Errorf("%w: have %d available, need %d", entities.ErrInsufficientTokens, wallet.AvailableTokens, wager.Amount)
	}

	now := time.Now()
	wager.Status = entities.WagerStateAccepted
	wager.AcceptedAt = &now
	if err := s.wagerRepo.Update(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}

	s.publishStateChange(wager, userID, entities.WagerStatePending)
	return wager, nil
}

// DeclineWager lets the opponent refuse a pending wager
func (s *wagerService) DeclineWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error) {
	wager, err := s.lockWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if !wager.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: only the challenged user can decline this wager", entities.ErrForbidden)
	}
	if !wager.CanBeDeclined(userID) {
		return nil, fmt.Errorf("%w: wager is %s", entities.ErrInvalidState, wager.Status)
	}

	wager.Status = entities.WagerStateDeclined
	if err := s.wagerRepo.Update(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}

	s.publishStateChange(wager, userID, entities.WagerStatePending)
	return wager, nil
}

// CancelWager lets the creator withdraw a wager nobody accepted yet
func (s *wagerService) CancelWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error) {
	wager, err := s.lockWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if !wager.IsParticipant(userID) {
		return nil, fmt.Errorf("%w: only the creator can cancel this wager", entities.ErrForbidden)
	}
	if !wager.CanBeCancelled(userID) {
		return nil, fmt.Errorf("%w: wager is %s", entities.ErrInvalidState, wager.Status)
	}

	wager.Status = entities.WagerStateCancelled
	if err := s.wagerRepo.Update(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}

	s.publishStateChange(wager, userID, entities.WagerStatePending)
	return wager, nil
}

// CompleteWager settles an accepted wager and moves the loser's stake to the winner
func (s *wagerService) CompleteWager(ctx context.Context, wagerID, reporterID, winnerID int64) (*entities.Wager, error) {
	wager, err := s.lockWager(ctx, wagerID)
	if err != nil {
		return nil, err
	}
	if !wager.IsParticipant(reporterID) {
		return nil, fmt.Errorf("%w: only participants can settle their own wager", entities.ErrForbidden)
	}
	if !wager.CanBeCompleted(reporterID) {
		return nil, fmt.Errorf("%w: wager is %s", entities.ErrInvalidState, wager.Status)
	}
	if !wager.IsParticipant(winnerID) {
		return nil, fmt.Errorf("%w: winner must be a participant", entities.ErrInvalidInput)
	}
	loserID := wager.GetOpponent(winnerID)

	if err := s.walletRepo.LockWallets(ctx, wager.UserID, wager.OpponentID); err != nil {
		return nil, err
	}
	if err := s.walletRepo.DeductTokens(ctx, loserID, wager.Amount); err != nil {
		return nil, fmt.Errorf("failed to debit loser: %w", err)
	}
	if err := s.walletRepo.AddTokens(ctx, winnerID, wager.Amount); err != nil {
		return nil, fmt.Errorf("failed to credit winner: %w", err)
	}

	now := time.Now()
	wager.Status = entities.WagerStateCompleted
	wager.WinnerID = &winnerID
	wager.CompletedAt = &now
	if err := s.wagerRepo.Update(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to update wager: %w", err)
	}

	winTx := entities.NewTransaction(winnerID, entities.TransactionTypeWagerWin, entities.TransactionStatusCompleted).
		WithRelated(entities.RelatedTypeWager, wager.ID)
	winTx.TokenAmount = wager.Amount
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, winTx); err != nil {
		return nil, err
	}

	lossTx := entities.NewTransaction(loserID, entities.TransactionTypeWagerLoss, entities.TransactionStatusCompleted).
		WithRelated(entities.RelatedTypeWager, wager.ID)
	lossTx.TokenAmount = -wager.Amount
	if err := RecordTransaction(ctx, s.transactionRepo, s.eventPublisher, lossTx); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.WagerCompletedEvent{
		WagerID:  wager.ID,
		WinnerID: winnerID,
		LoserID:  loserID,
		Amount:   wager.Amount,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeWagerCompleted).Error("Failed to publish wager completed event")
	}

	log.WithFields(log.Fields{
		"wager_id":    wager.ID,
		"winner_id":   winnerID,
		"loser_id":    loserID,
		"amount":      wager.Amount,
		"reported_by": reporterID,
	}).Info("Wager completed")

	return wager, nil
}

// GetWager returns a wager only to its participants
func (s *wagerService) GetWager(ctx context.Context, wagerID, userID int64) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByID(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil || !wager.IsParticipant(userID) {
		return nil, fmt.Errorf("wager %d: %w", wagerID, entities.ErrNotFound)
	}
	return wager, nil
}

// ListUserWagers returns the wagers a user created or was challenged to
func (s *wagerService) ListUserWagers(ctx context.Context, userID int64, activeOnly bool, limit int) ([]*entities.Wager, error) {
	wagers, err := s.wagerRepo.ListByUser(ctx, userID, activeOnly, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}
	return wagers, nil
}

func (s *wagerService) lockWager(ctx context.Context, wagerID int64) (*entities.Wager, error) {
	wager, err := s.wagerRepo.GetByIDForUpdate(ctx, wagerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	if wager == nil {
		return nil, fmt.Errorf("wager %d: %w", wagerID, entities.ErrNotFound)
	}
	return wager, nil
}

func (s *wagerService) publishStateChange(wager *entities.Wager, actorID int64, oldState entities.WagerState) {
	if err := s.eventPublisher.Publish(events.WagerStateChangeEvent{
		WagerID:    wager.ID,
		UserID:     wager.UserID,
		OpponentID: wager.OpponentID,
		ActorID:    actorID,
		OldState:   oldState,
		NewState:   wager.Status,
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeWagerStateChange).Error("Failed to publish wager state change event")
	}
}
