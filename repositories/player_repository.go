package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kartliga/kart-league/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name is already taken")
	ErrPlayerInUse        = errors.New("player is referenced by recorded results")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error)
	GetOrCreateByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Rename(ctx context.Context, id int, name string) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO players (name) VALUES ($1) RETURNING id`
	err := executor.QueryRowContext(ctx, query, p.Name).Scan(&p.ID)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, name FROM players WHERE id = $1`
	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name FROM players WHERE name = $1`
	p := &models.Player{}
	err := executor.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetOrCreateByName реализует «создание при первом упоминании».
// Гонка двух вставок разрешается повторным чтением после конфликта имени.
func (r *postgresPlayerRepository) GetOrCreateByName(ctx context.Context, exec SQLExecutor, name string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	p, err := r.GetByName(ctx, executor, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		return nil, err
	}
	p = &models.Player{Name: name}
	createErr := r.Create(ctx, executor, p)
	if createErr == nil {
		return p, nil
	}
	if errors.Is(createErr, ErrPlayerNameConflict) {
		return r.GetByName(ctx, executor, name)
	}
	return nil, createErr
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `SELECT id, name FROM players ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
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

func (r *postgresPlayerRepository) Rename(ctx context.Context, id int, name string) error {
	query := `UPDATE players SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// Delete удаляет игрока. Каскадов нет: пока на игрока ссылаются
// round_results или участия в турнирах, операция завершится ErrPlayerInUse.
func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrPlayerNameConflict
		case "23503":
			return ErrPlayerInUse
		}
	}
	return err
}
