package services

import (
	"context"
	"fmt"
	"strings"

	"wagerhub/domain/entities"
	"wagerhub/domain/interfaces"
)

type gameService struct {
	gameRepo interfaces.GameRepository
}

// NewGameService creates a new game catalogue service
func NewGameService(gameRepo interfaces.GameRepository) interfaces.GameService {
	return &gameService{gameRepo: gameRepo}
}

func (s *gameService) ListGames(ctx context.Context, status *entities.GameStatus) ([]*entities.Game, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown game status %q", entities.ErrInvalidInput, *status)
	}
	games, err := s.gameRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) GetGame(ctx context.Context, id int64) (*entities.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", id, entities.ErrNotFound)
	}
	return game, nil
}

func (s *gameService) CreateGame(ctx context.Context, name, description string) (*entities.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", entities.ErrInvalidInput)
	}

	game := &entities.Game{
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      entities.GameStatusActive,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *gameService) UpdateGameStatus(ctx context.Context, id int64, status entities.GameStatus) (*entities.Game, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown game status %q", entities.ErrInvalidInput, status)
	}
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gameRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update game status: %w", err)
	}
	game.Status = status
	return game, nil
}
