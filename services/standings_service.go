package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/repositories"
	"golang.org/x/sync/errgroup"
)

// StandingsService считает таблицы. Каждый вызов — полный пересчёт по
// записанным результатам, инкрементальных патчей нет.
type StandingsService struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	playerRepo     repositories.PlayerRepository
	historicalRepo repositories.HistoricalTotalRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	playerRepo repositories.PlayerRepository,
	historicalRepo repositories.HistoricalTotalRepository,
) *StandingsService {
	return &StandingsService{
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		playerRepo:     playerRepo,
		historicalRepo: historicalRepo,
	}
}

// assembleStandings собирает таблицу турнира. Порядок: очки по убыванию,
// при равенстве — стабильно по порядку вступления в турнир (вторичного
// ключа сортировки нет намеренно). Игроки, убранные из состава, но уже
// имеющие результаты, остаются в таблице после текущего состава.
func assembleStandings(
	roster []models.Player,
	rounds []models.Round,
	results []models.RoundResult,
	playersByID map[int]models.Player,
) []models.StandingEntry {
	roundsByID := make(map[int]models.Round, len(rounds))
	for _, round := range rounds {
		roundsByID[round.ID] = round
	}

	entryIndex := make(map[int]int, len(roster))
	entries := make([]models.StandingEntry, 0, len(roster))
	addPlayer := func(p models.Player) {
		entryIndex[p.ID] = len(entries)
		entries = append(entries, models.StandingEntry{
			Player:    p,
			Breakdown: make([]models.RoundBreakdown, 0),
		})
	}
	for _, p := range roster {
		addPlayer(p)
	}

	for _, result := range results {
		idx, ok := entryIndex[result.PlayerID]
		if !ok {
			// Игрок убран из состава, его записанные результаты остаются.
			player, known := playersByID[result.PlayerID]
			if !known {
				player = models.Player{ID: result.PlayerID}
			}
			addPlayer(player)
			idx = entryIndex[result.PlayerID]
		}
		round := roundsByID[result.RoundID]
		entries[idx].TotalPoints += result.Points
		entries[idx].Breakdown = append(entries[idx].Breakdown, models.RoundBreakdown{
			RoundNumber: round.RoundNumber,
			TrackName:   round.TrackName,
			Position:    result.Position,
			Points:      result.Points,
		})
	}

	for i := range entries {
		breakdown := entries[i].Breakdown
		sort.SliceStable(breakdown, func(a, b int) bool {
			return breakdown[a].RoundNumber < breakdown[b].RoundNumber
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].TotalPoints > entries[b].TotalPoints
	})
	return entries
}

// assembleAllTime сливает ручные итоги с исторической надбавкой.
// Детализация по раундам для исторических данных не восстанавливается —
// её не существует. Средние очки за раунд считаются только по ручным
// раундам, при нуле раундов — 0, не ошибка.
func assembleAllTime(
	manual map[string]repositories.PlayerTally,
	historical map[string]repositories.HistoricalTally,
) []models.AllTimeEntry {
	names := make(map[string]bool, len(manual)+len(historical))
	for name := range manual {
		names[name] = true
	}
	for name := range historical {
		names[name] = true
	}

	entries := make([]models.AllTimeEntry, 0, len(names))
	for name := range names {
		tally := manual[name]
		offset := historical[name]
		entry := models.AllTimeEntry{
			PlayerName:            name,
			ManualPoints:          tally.Points,
			ManualRoundsPlayed:    tally.RoundsPlayed,
			HistoricalPoints:      offset.Points,
			HistoricalTournaments: offset.TournamentsPlayed,
			TotalPoints:           tally.Points + offset.Points,
		}
		if tally.RoundsPlayed > 0 {
			entry.AveragePointsPerRound = float64(tally.Points) / float64(tally.RoundsPlayed)
		}
		entries = append(entries, entry)
	}

	// Источник — map, порядка прибытия нет; имя как вторичный ключ даёт
	// детерминированный вывод.
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].TotalPoints != entries[b].TotalPoints {
			return entries[a].TotalPoints > entries[b].TotalPoints
		}
		return entries[a].PlayerName < entries[b].PlayerName
	})
	return entries
}

// TournamentStandings возвращает таблицу турнира с пораундовой
// детализацией.
func (s *StandingsService) TournamentStandings(ctx context.Context, tournamentID int) ([]models.StandingEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var (
		roster  []models.Player
		rounds  []models.Round
		results []models.RoundResult
		players []models.Player
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.tournamentRepo.ListPlayers(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		rounds, err = s.roundRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.roundRepo.ListResultsByTournament(gCtx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings data: %w", err)
	}

	playersByID := make(map[int]models.Player, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
	}
	return assembleStandings(roster, rounds, results, playersByID), nil
}

// AllTimeStandings возвращает сводную таблицу: ручные итоги по всем
// турнирам плюс импортированная историческая надбавка.
func (s *StandingsService) AllTimeStandings(ctx context.Context) ([]models.AllTimeEntry, error) {
	var (
		manual     map[string]repositories.PlayerTally
		historical map[string]repositories.HistoricalTally
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		manual, err = s.roundRepo.ListResultsByPlayerName(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.historicalRepo.ListTotals(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load all-time standings data: %w", err)
	}
	return assembleAllTime(manual, historical), nil
}
