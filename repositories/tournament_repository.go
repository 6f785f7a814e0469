package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kartliga/kart-league/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameConflict  = errors.New("tournament name conflict")
	ErrParticipantConflict     = errors.New("player is already registered for this tournament")
	ErrParticipantNotFound     = errors.New("player is not registered for this tournament")
	ErrParticipantInvalid      = errors.New("invalid player reference")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetCompleted(ctx context.Context, exec SQLExecutor, id int, completedAt time.Time) error
	IncrementRoundCounter(ctx context.Context, exec SQLExecutor, id int) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
	RemovePlayer(ctx context.Context, tournamentID, playerID int) error
	RemoveAllPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) error
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, status, current_round)
		VALUES ($1, $2, 0)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, t.Name, t.Status).Scan(&t.ID, &t.CreatedAt)
	return r.handleTournamentError(err)
}

const tournamentColumns = `id, name, status, current_round, created_at, completed_at`

func (r *postgresTournamentRepository) scanTournament(row *sql.Row) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.CurrentRound, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate блокирует строку турнира до конца транзакции.
// Используется при записи раунда, чтобы два клиента не получили один
// и тот же номер раунда.
func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Status, &t.CurrentRound, &t.CreatedAt, &t.CompletedAt); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// SetCompleted переводит турнир в терминальное состояние ровно один раз:
// повторный вызов не перезапишет completed_at.
func (r *postgresTournamentRepository) SetCompleted(ctx context.Context, exec SQLExecutor, id int, completedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET status = $1, completed_at = $2
		WHERE id = $3 AND completed_at IS NULL`
	result, err := executor.ExecContext(ctx, query, models.StatusCompleted, completedAt, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) IncrementRoundCounter(ctx context.Context, exec SQLExecutor, id int) (int, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET current_round = current_round + 1 WHERE id = $1 RETURNING current_round`
	var current int
	err := executor.QueryRowContext(ctx, query, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}
	return current, nil
}

// Delete удаляет только строку турнира. Порядок удаления зависимых
// строк (результаты → раунды → участники) обеспечивает сервис в одной
// транзакции.
func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO tournament_players (tournament_id, player_id, joined_at) VALUES ($1, $2, NOW())`
	_, err := executor.ExecContext(ctx, query, tournamentID, playerID)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) RemovePlayer(ctx context.Context, tournamentID, playerID int) error {
	query := `DELETE FROM tournament_players WHERE tournament_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresTournamentRepository) RemoveAllPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM tournament_players WHERE tournament_id = $1`, tournamentID)
	return err
}

// ListPlayers возвращает участников в порядке вступления. Этот порядок
// переживает сортировку таблицы и даёт стабильный tie-break.
func (r *postgresTournamentRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.name
		FROM tournament_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.joined_at ASC, p.id ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "tournaments_name_key":
				return ErrTournamentNameConflict
			case "tournament_players_pkey":
				return ErrParticipantConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "tournament_players_player_id_fkey":
				return ErrParticipantInvalid
			case "tournament_players_tournament_id_fkey":
				return ErrTournamentNotFound
			}
		}
	}
	return err
}
