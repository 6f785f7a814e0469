package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kartliga/kart-league/models"
	"github.com/lib/pq"
)

var (
	ErrRoundNotFound          = errors.New("round not found")
	ErrRoundNumberConflict    = errors.New("round number already used in this tournament")
	ErrRoundTournamentInvalid = errors.New("round tournament conflict or invalid")
	ErrRoundResultInvalid     = errors.New("round result player or round invalid")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error)
	CreateResults(ctx context.Context, exec SQLExecutor, results []models.RoundResult) error
	ListResultsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.RoundResult, error)
	ListResultsByPlayerName(ctx context.Context) (map[string]PlayerTally, error)
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
	DeleteResultsByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

// PlayerTally — суммарные ручные очки и количество сыгранных раундов
// по имени игрока, для сводной таблицы за всё время.
type PlayerTally struct {
	Points       int
	RoundsPlayed int
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (tournament_id, round_number, track_name, track_number, creator)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		round.TournamentID, round.RoundNumber, round.TrackName, round.TrackNumber, round.Creator,
	).Scan(&round.ID, &round.CreatedAt)
	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `
		SELECT id, tournament_id, round_number, track_name, track_number, creator, created_at
		FROM rounds WHERE id = $1`
	round := &models.Round{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&round.ID, &round.TournamentID, &round.RoundNumber,
		&round.TrackName, &round.TrackNumber, &round.Creator, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round_number, track_name, track_number, creator, created_at
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY round_number ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if scanErr := rows.Scan(
			&round.ID, &round.TournamentID, &round.RoundNumber,
			&round.TrackName, &round.TrackNumber, &round.Creator, &round.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

// CreateResults пишет все результаты раунда одним prepared statement.
// Вызывается только внутри транзакции записи раунда: частично записанный
// раунд не должен быть виден читателям.
func (r *postgresRoundRepository) CreateResults(ctx context.Context, exec SQLExecutor, results []models.RoundResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, ok := r.getExecutor(exec).(*sql.Tx)
	if !ok {
		return fmt.Errorf("CreateResults requires a transaction executor")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO round_results (round_id, player_id, position, points)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("CreateResults failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		_, err = stmt.ExecContext(ctx, result.RoundID, result.PlayerID, result.Position, result.Points)
		if err != nil {
			return fmt.Errorf("CreateResults failed for player %d: %w", result.PlayerID, r.handleRoundError(err))
		}
	}
	return nil
}

func (r *postgresRoundRepository) ListResultsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.RoundResult, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT rr.round_id, rr.player_id, rr.position, rr.points
		FROM round_results rr
		JOIN rounds r ON r.id = rr.round_id
		WHERE r.tournament_id = $1
		ORDER BY r.round_number ASC, rr.position ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.RoundResult, 0)
	for rows.Next() {
		var result models.RoundResult
		if scanErr := rows.Scan(&result.RoundID, &result.PlayerID, &result.Position, &result.Points); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ListResultsByPlayerName агрегирует ручные очки по именам игроков.
// Историческая надбавка сюда не входит, её добавляет сервис таблицы.
func (r *postgresRoundRepository) ListResultsByPlayerName(ctx context.Context) (map[string]PlayerTally, error) {
	query := `
		SELECT p.name, COALESCE(SUM(rr.points), 0), COUNT(rr.round_id)
		FROM players p
		LEFT JOIN round_results rr ON rr.player_id = p.id
		GROUP BY p.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tallies := make(map[string]PlayerTally)
	for rows.Next() {
		var name string
		var tally PlayerTally
		if scanErr := rows.Scan(&name, &tally.Points, &tally.RoundsPlayed); scanErr != nil {
			return nil, scanErr
		}
		tallies[name] = tally
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tallies, nil
}

func (r *postgresRoundRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM rounds WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresRoundRepository) DeleteResultsByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		DELETE FROM round_results
		WHERE round_id IN (SELECT id FROM rounds WHERE tournament_id = $1)`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	return err
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "rounds_tournament_id_round_number_key" {
				return ErrRoundNumberConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "rounds_tournament_id_fkey":
				return ErrRoundTournamentInvalid
			case "round_results_round_id_fkey", "round_results_player_id_fkey":
				return ErrRoundResultInvalid
			}
		}
	}
	return err
}
