package repositories

import (
	"context"
	"database/sql"
)

// HistoricalTotalRepository хранит импортированные агрегаты без
// пораундовой детализации. Пишется только импортом.
type HistoricalTotalRepository interface {
	AddTotals(ctx context.Context, exec SQLExecutor, playerName string, points, tournaments int) error
	ListTotals(ctx context.Context) (map[string]HistoricalTally, error)
}

type HistoricalTally struct {
	Points            int
	TournamentsPlayed int
}

type postgresHistoricalTotalRepository struct {
	db *sql.DB
}

func NewPostgresHistoricalTotalRepository(db *sql.DB) HistoricalTotalRepository {
	return &postgresHistoricalTotalRepository{db: db}
}

func (r *postgresHistoricalTotalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// AddTotals добавляет очки к существующей строке игрока или создаёт её.
// Повторный импорт того же листа складывается — дедупликацию выполняет
// сервис импорта по имени турнира.
func (r *postgresHistoricalTotalRepository) AddTotals(ctx context.Context, exec SQLExecutor, playerName string, points, tournaments int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO historical_player_totals (player_name, total_points, tournaments_played)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_name) DO UPDATE SET
			total_points = historical_player_totals.total_points + EXCLUDED.total_points,
			tournaments_played = historical_player_totals.tournaments_played + EXCLUDED.tournaments_played`
	_, err := executor.ExecContext(ctx, query, playerName, points, tournaments)
	return err
}

func (r *postgresHistoricalTotalRepository) ListTotals(ctx context.Context) (map[string]HistoricalTally, error) {
	query := `SELECT player_name, total_points, tournaments_played FROM historical_player_totals`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]HistoricalTally)
	for rows.Next() {
		var name string
		var tally HistoricalTally
		if scanErr := rows.Scan(&name, &tally.Points, &tally.TournamentsPlayed); scanErr != nil {
			return nil, scanErr
		}
		totals[name] = tally
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}
