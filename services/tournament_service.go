package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/realtime"
	"github.com/kartliga/kart-league/repositories"
)

// TournamentService управляет жизненным циклом турнира:
// accepting_players → in_progress → completed. Переходы проверяются по
// явной таблице, completed — терминальное состояние.
type TournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	chatRepo       repositories.ChatRepository
	hub            *realtime.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	chatRepo repositories.ChatRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		chatRepo:       chatRepo,
		hub:            hub,
		logger:         logger,
	}
}

// CreateTournament создаёт турнир в состоянии набора игроков.
func (s *TournamentService) CreateTournament(ctx context.Context, name string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	tournament := &models.Tournament{
		Name:   name,
		Status: models.StatusAcceptingPlayers,
	}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return nil, s.mapRepoError(err)
	}
	return tournament, nil
}

// GetTournament возвращает турнир с участниками и раундами.
func (s *TournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	players, err := s.tournamentRepo.ListPlayers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament players: %w", err)
	}
	tournament.Players = players

	rounds, err := s.roundRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament rounds: %w", err)
	}
	tournament.Rounds = rounds

	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

// AddPlayer добавляет игрока в состав. Разрешено и между раундами:
// смена состава не сбрасывает счётчик раундов и не трогает уже
// записанные результаты.
func (s *TournamentService) AddPlayer(ctx context.Context, tournamentID int, playerName string) (*models.Player, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, ErrPlayerNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if tournament.Completed() {
		return nil, ErrTournamentCompleted
	}

	var player *models.Player
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var txErr error
		player, txErr = s.playerRepo.GetOrCreateByName(ctx, tx, playerName)
		if txErr != nil {
			return txErr
		}
		return s.tournamentRepo.AddPlayer(ctx, tx, tournamentID, player.ID)
	})
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return player, nil
}

// RemovePlayer убирает игрока из состава. Его уже записанные результаты
// остаются в таблице.
func (s *TournamentService) RemovePlayer(ctx context.Context, tournamentID, playerID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return s.mapRepoError(err)
	}
	if tournament.Completed() {
		return ErrTournamentCompleted
	}
	if err := s.tournamentRepo.RemovePlayer(ctx, tournamentID, playerID); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

// Start переводит турнир в in_progress. Требуется не менее двух игроков.
func (s *TournamentService) Start(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if !isValidStatusTransition(tournament.Status, models.StatusInProgress) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusInProgress)
	}
	if tournament.Status == models.StatusInProgress {
		return tournament, nil
	}

	players, err := s.tournamentRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament players: %w", err)
	}
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusInProgress); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.Status = models.StatusInProgress
	tournament.Players = players
	return tournament, nil
}

// Complete завершает турнир. completed_at выставляется ровно один раз,
// после этого запись раундов невозможна.
func (s *TournamentService) Complete(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if tournament.Completed() {
		return nil, ErrTournamentCompleted
	}
	if !isValidStatusTransition(tournament.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusCompleted)
	}

	now := time.Now().UTC()
	if err := s.tournamentRepo.SetCompleted(ctx, nil, tournamentID, now); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.Status = models.StatusCompleted
	tournament.CompletedAt = &now

	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.RoomForTournament(tournamentID), realtime.Message{
			Type:    realtime.MessageTournamentCompleted,
			RoomID:  realtime.RoomForTournament(tournamentID),
			Payload: tournament,
		})
	}
	return tournament, nil
}

// DeleteTournament удаляет турнир со всеми зависимыми строками в одной
// транзакции. Порядок фиксирован ссылочными ограничениями: результаты,
// раунды, чат, участники, сам турнир.
func (s *TournamentService) DeleteTournament(ctx context.Context, tournamentID int) error {
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.roundRepo.DeleteResultsByTournamentID(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to delete round results: %w", err)
		}
		if err := s.roundRepo.DeleteByTournamentID(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to delete rounds: %w", err)
		}
		if err := s.chatRepo.DeleteByTournamentID(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to delete chat messages: %w", err)
		}
		if err := s.tournamentRepo.RemoveAllPlayers(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to delete tournament players: %w", err)
		}
		return s.tournamentRepo.Delete(ctx, tx, tournamentID)
	})
	if err != nil {
		return s.mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", tournamentID))
	return nil
}

func (s *TournamentService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrPlayerAlreadyInRoster
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantMissing
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerNameConflict
	default:
		return err
	}
}
