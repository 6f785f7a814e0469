package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/repositories"
	"github.com/kartliga/kart-league/storage"
)

// BulkImportPlayer — очки одного игрока в структурированном импорте.
// Ключ rounds — метка листа (дата DD.MM.YY).
type BulkImportPlayer struct {
	PlayerName  string         `json:"playerName"`
	Rounds      map[string]int `json:"rounds"`
	TotalPoints int            `json:"totalPoints"`
}

// BulkImportPayload — структурированный импорт одного исторического
// турнира.
type BulkImportPayload struct {
	TournamentName string             `json:"tournamentName"`
	Date           string             `json:"date"`
	Players        []BulkImportPlayer `json:"players"`
}

// ImportSummary — отчёт об импорте для вызывающей стороны.
type ImportSummary struct {
	TournamentsCreated int    `json:"tournaments_created"`
	RoundsCreated      int    `json:"rounds_created"`
	ResultsCreated     int    `json:"results_created"`
	SkippedSheets      int    `json:"skipped_sheets"`
	SkippedRows        int    `json:"skipped_rows"`
	ArchiveURL         string `json:"archive_url,omitempty"`
}

// ImportService материализует исторические выгрузки: структурированный
// JSON и загруженные XLSX/CSV файлы. Каждый прошедший отсечку лист
// становится завершённым турниром с одним синтетическим раундом, а
// суммы очков добавляются в исторические итоги игроков.
type ImportService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	historicalRepo repositories.HistoricalTotalRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewImportService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	historicalRepo repositories.HistoricalTotalRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		historicalRepo: historicalRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

// ImportBulk материализует структурированный payload: по одному раунду
// на каждую метку, прошедшую отсечку. Метки вне шаблона DD.MM.YY и до
// даты отсечки пропускаются.
func (s *ImportService) ImportBulk(ctx context.Context, payload BulkImportPayload) (*ImportSummary, error) {
	name := strings.TrimSpace(payload.TournamentName)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	// Собираем валидные метки раундов по всем игрокам.
	labelSet := make(map[string]time.Time)
	rejected := make(map[string]bool)
	summary := &ImportSummary{}
	for _, player := range payload.Players {
		for label := range player.Rounds {
			if _, seen := labelSet[label]; seen || rejected[label] {
				continue
			}
			date, ok := parseSheetDate(label)
			if !ok || date.Before(importCutoffDate) {
				rejected[label] = true
				summary.SkippedSheets++
				continue
			}
			labelSet[label] = date
		}
	}

	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(a, b int) bool {
		return labelSet[labels[a]].Before(labelSet[labels[b]])
	})

	validPlayers := make([]BulkImportPlayer, 0, len(payload.Players))
	for _, player := range payload.Players {
		if !isValidPlayerName(player.PlayerName) {
			summary.SkippedRows++
			continue
		}
		validPlayers = append(validPlayers, player)
	}
	if len(labels) == 0 || len(validPlayers) == 0 {
		return nil, ErrImportEmpty
	}

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		tournament, err := s.createCompletedTournament(ctx, tx, name)
		if err != nil {
			return err
		}
		summary.TournamentsCreated++

		playerIDs := make(map[string]int, len(validPlayers))
		for _, player := range validPlayers {
			p, pErr := s.playerRepo.GetOrCreateByName(ctx, tx, strings.TrimSpace(player.PlayerName))
			if pErr != nil {
				return pErr
			}
			playerIDs[player.PlayerName] = p.ID
		}

		for _, label := range labels {
			rows := make([]SheetRow, 0, len(validPlayers))
			for _, player := range validPlayers {
				points, played := player.Rounds[label]
				if !played {
					continue
				}
				rows = append(rows, SheetRow{PlayerName: player.PlayerName, Points: points})
			}
			if len(rows) == 0 {
				continue
			}
			created, rErr := s.createImportedRound(ctx, tx, tournament.ID, label, rows, playerIDs)
			if rErr != nil {
				return rErr
			}
			summary.RoundsCreated++
			summary.ResultsCreated += created
		}

		for _, player := range validPlayers {
			if hErr := s.historicalRepo.AddTotals(ctx, tx, strings.TrimSpace(player.PlayerName), player.TotalPoints, 1); hErr != nil {
				return hErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bulk import completed",
		slog.String("tournament", name),
		slog.Int("rounds", summary.RoundsCreated),
		slog.Int("results", summary.ResultsCreated),
	)
	return summary, nil
}

// ImportFile разбирает загруженный XLSX/CSV и материализует каждый
// прошедший отсечку лист как отдельный завершённый турнир с одним
// синтетическим раундом. Исходный файл архивируется в объектное
// хранилище, если оно настроено.
func (s *ImportService) ImportFile(ctx context.Context, filename string, data []byte) (*ImportSummary, error) {
	var (
		sheets        []ImportSheet
		skippedSheets int
		skippedRows   int
		err           error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		sheets, skippedSheets, skippedRows, err = parseWorkbook(data)
	case ".csv":
		label := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		sheets, skippedSheets, skippedRows, err = parseCSV(data, label)
	default:
		return nil, ErrImportUnsupportedFile
	}
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{SkippedSheets: skippedSheets, SkippedRows: skippedRows}
	if len(sheets) == 0 {
		if skippedSheets > 0 {
			// Все листы до отсечки: импорт пустой, но это не ошибка.
			return summary, nil
		}
		return nil, ErrImportEmpty
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, sheet := range sheets {
			tournament, tErr := s.createCompletedTournament(ctx, tx, "Imported "+sheet.Label)
			if tErr != nil {
				return tErr
			}
			summary.TournamentsCreated++

			playerIDs := make(map[string]int, len(sheet.Rows))
			for _, row := range sheet.Rows {
				p, pErr := s.playerRepo.GetOrCreateByName(ctx, tx, row.PlayerName)
				if pErr != nil {
					return pErr
				}
				playerIDs[row.PlayerName] = p.ID
			}

			created, rErr := s.createImportedRound(ctx, tx, tournament.ID, sheet.Label, sheet.Rows, playerIDs)
			if rErr != nil {
				return rErr
			}
			summary.RoundsCreated++
			summary.ResultsCreated += created

			for _, row := range sheet.Rows {
				if hErr := s.historicalRepo.AddTotals(ctx, tx, row.PlayerName, row.Points, 1); hErr != nil {
					return hErr
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.uploader != nil {
		key := fmt.Sprintf("imports/%s/%s", time.Now().UTC().Format("2006-01-02"), filepath.Base(filename))
		result, upErr := s.uploader.Upload(ctx, key, contentTypeFor(filename), bytes.NewReader(data))
		if upErr != nil {
			// Материализация уже зафиксирована; архив — best effort.
			s.logger.WarnContext(ctx, "failed to archive import file", slog.String("key", key), slog.Any("error", upErr))
		} else {
			summary.ArchiveURL = result.Location
		}
	}

	s.logger.InfoContext(ctx, "file import completed",
		slog.String("filename", filename),
		slog.Int("tournaments", summary.TournamentsCreated),
		slog.Int("skipped_sheets", summary.SkippedSheets),
		slog.Int("skipped_rows", summary.SkippedRows),
	)
	return summary, nil
}

// createCompletedTournament создаёт турнир сразу в терминальном
// состоянии: исторические данные не проходят живой жизненный цикл.
func (s *ImportService) createCompletedTournament(ctx context.Context, tx *sql.Tx, name string) (*models.Tournament, error) {
	tournament := &models.Tournament{Name: name, Status: models.StatusAcceptingPlayers}
	if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.SetCompleted(ctx, tx, tournament.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	tournament.Status = models.StatusCompleted
	return tournament, nil
}

// createImportedRound пишет один синтетический раунд: позиции
// раздаются по убыванию импортированных очков, сами очки сохраняются
// как есть (таблица очков к историческим данным не применяется).
func (s *ImportService) createImportedRound(
	ctx context.Context,
	tx *sql.Tx,
	tournamentID int,
	label string,
	rows []SheetRow,
	playerIDs map[string]int,
) (int, error) {
	roundNumber, err := s.tournamentRepo.IncrementRoundCounter(ctx, tx, tournamentID)
	if err != nil {
		return 0, err
	}

	round := &models.Round{
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		TrackName:    label,
		Creator:      "import",
	}
	if err := s.roundRepo.Create(ctx, tx, round); err != nil {
		return 0, err
	}

	ranked := make([]SheetRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Points > ranked[b].Points
	})

	results := make([]models.RoundResult, 0, len(ranked))
	for i, row := range ranked {
		results = append(results, models.RoundResult{
			RoundID:  round.ID,
			PlayerID: playerIDs[row.PlayerName],
			Position: i + 1,
			Points:   row.Points,
		})
	}
	if err := s.roundRepo.CreateResults(ctx, tx, results); err != nil {
		return 0, err
	}
	return len(results), nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
