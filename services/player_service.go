package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/repositories"
)

type PlayerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

func (s *PlayerService) CreatePlayer(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, s.mapRepoError(err)
	}
	return player, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return player, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.playerRepo.List(ctx)
}

// RenamePlayer — единственная разрешённая мутация игрока.
func (s *PlayerService) RenamePlayer(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrPlayerNameRequired
	}
	if err := s.playerRepo.Rename(ctx, id, name); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

// DeletePlayer — административное действие. Каскадов нет: пока на
// игрока ссылаются результаты или составы, удаление вернёт ErrPlayerInUse.
func (s *PlayerService) DeletePlayer(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *PlayerService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerNameConflict
	case errors.Is(err, repositories.ErrPlayerInUse):
		return ErrPlayerInUse
	default:
		return err
	}
}
