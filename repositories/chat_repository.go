package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kartliga/kart-league/models"
	"github.com/lib/pq"
)

var ErrChatTournamentInvalid = errors.New("chat message tournament invalid")

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByTournament(ctx context.Context, tournamentID, limit int) ([]models.ChatMessage, error)
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(db *sql.DB) ChatRepository {
	return &postgresChatRepository{db: db}
}

func (r *postgresChatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (tournament_id, author, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, m.TournamentID, m.Author, m.Body).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrChatTournamentInvalid
		}
		return err
	}
	return nil
}

// ListByTournament возвращает последние limit сообщений в хронологическом
// порядке.
func (r *postgresChatRepository) ListByTournament(ctx context.Context, tournamentID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, tournament_id, author, body, created_at
		FROM (
			SELECT id, tournament_id, author, body, created_at
			FROM chat_messages
			WHERE tournament_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if scanErr := rows.Scan(&m.ID, &m.TournamentID, &m.Author, &m.Body, &m.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *postgresChatRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	_, err := executor.ExecContext(ctx, `DELETE FROM chat_messages WHERE tournament_id = $1`, tournamentID)
	return err
}
