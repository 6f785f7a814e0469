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

// RecordRoundInput — полная расстановка одного заезда. Ranking идёт от
// первого места к последнему и должен совпадать с текущим составом
// турнира один к одному.
type RecordRoundInput struct {
	Creator     string `json:"creator"`
	TrackNumber string `json:"track_number"`
	TrackName   string `json:"track_name"`
	Ranking     []int  `json:"ranking"` // player IDs, позиция = индекс+1
}

// RoundService записывает раунды. Раунд и все его результаты пишутся в
// одной транзакции: частично записанный раунд не виден читателям, а
// номер раунда выдаётся под блокировкой строки турнира, чтобы два
// одновременных клиента не получили один номер.
type RoundService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	notifier       *realtime.StandingsNotifier
	logger         *slog.Logger
}

func NewRoundService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	notifier *realtime.StandingsNotifier,
	logger *slog.Logger,
) *RoundService {
	return &RoundService{
		db:             db,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// buildRoundResults раздаёт позиции и очки по расстановке: позиция =
// индекс+1, очки — по таблице для len(ranking) участников.
func buildRoundResults(roundID int, ranking []int) []models.RoundResult {
	results := make([]models.RoundResult, 0, len(ranking))
	for i, playerID := range ranking {
		position := i + 1
		results = append(results, models.RoundResult{
			RoundID:  roundID,
			PlayerID: playerID,
			Position: position,
			Points:   PointsFor(position, len(ranking)),
		})
	}
	return results
}

// validateRanking проверяет, что расстановка — перестановка текущего
// состава: каждый участник ровно один раз, посторонних нет.
func validateRanking(participants []models.Player, ranking []int) error {
	if len(ranking) < 2 {
		return ErrNotEnoughPlayers
	}
	expected := make(map[int]bool, len(participants))
	for _, p := range participants {
		expected[p.ID] = true
	}
	seen := make(map[int]bool, len(ranking))
	for _, id := range ranking {
		if seen[id] {
			return ErrRankingDuplicatePlayer
		}
		seen[id] = true
		if !expected[id] {
			return ErrRankingUnknownPlayer
		}
	}
	if len(ranking) != len(participants) {
		return ErrRankingIncomplete
	}
	return nil
}

// RecordRound записывает один заезд и возвращает раунд с результатами.
func (s *RoundService) RecordRound(ctx context.Context, tournamentID int, input RecordRoundInput) (*models.Round, error) {
	if strings.TrimSpace(input.TrackName) == "" {
		return nil, fmt.Errorf("%w: track name is required", ErrValidationFailed)
	}

	var round *models.Round
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.Completed() {
			return ErrTournamentCompleted
		}
		if tournament.Status != models.StatusInProgress {
			return ErrTournamentNotInProgress
		}

		participants, err := s.tournamentRepo.ListPlayers(ctx, tx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load tournament players: %w", err)
		}
		if err := validateRanking(participants, input.Ranking); err != nil {
			return err
		}

		roundNumber, err := s.tournamentRepo.IncrementRoundCounter(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		round = &models.Round{
			TournamentID: tournamentID,
			RoundNumber:  roundNumber,
			TrackName:    strings.TrimSpace(input.TrackName),
			TrackNumber:  strings.TrimSpace(input.TrackNumber),
			Creator:      strings.TrimSpace(input.Creator),
		}
		if err := s.roundRepo.Create(ctx, tx, round); err != nil {
			return err
		}

		round.Results = buildRoundResults(round.ID, input.Ranking)
		return s.roundRepo.CreateResults(ctx, tx, round.Results)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "round recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round_number", round.RoundNumber),
		slog.Int("participants", len(round.Results)),
	)
	s.notifier.StandingsChanged(tournamentID)
	return round, nil
}

// EndTournamentEarly завершает турнир без записи финального заезда:
// пустая расстановка допустима только здесь, раунд и результаты не
// создаются, completed_at выставляется один раз.
func (s *RoundService) EndTournamentEarly(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		var txErr error
		tournament, txErr = s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return txErr
		}
		if tournament.Completed() {
			return ErrTournamentCompleted
		}
		if !isValidStatusTransition(tournament.Status, models.StatusCompleted) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusCompleted)
		}
		now := time.Now().UTC()
		if txErr = s.tournamentRepo.SetCompleted(ctx, tx, tournamentID, now); txErr != nil {
			return txErr
		}
		tournament.Status = models.StatusCompleted
		tournament.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament ended early", slog.Int("tournament_id", tournamentID))
	s.notifier.StandingsChanged(tournamentID)
	return tournament, nil
}

// GetRound возвращает раунд по ID.
func (s *RoundService) GetRound(ctx context.Context, id int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}
