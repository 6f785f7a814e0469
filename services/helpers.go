package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kartliga/kart-league/models"
)

// --- Жизненный цикл турнира ---

// Переходы заданы явной таблицей: completed — терминальное состояние,
// из него переходов нет.
var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusAcceptingPlayers: {models.StatusInProgress},
	models.StatusInProgress:       {models.StatusCompleted},
	models.StatusCompleted:        {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// --- Транзакции ---

// runInTx выполняет fn в транзакции с откатом при ошибке или панике.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, beginErr := db.BeginTx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", err, rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()
	return fn(tx)
}
