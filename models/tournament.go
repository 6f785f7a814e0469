package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusAcceptingPlayers TournamentStatus = "accepting_players"
	StatusInProgress       TournamentStatus = "in_progress"
	StatusCompleted        TournamentStatus = "completed"
)

// Tournament представляет турнир.
// CurrentRound — счётчик уже записанных раундов; следующий раунд
// получает номер CurrentRound+1.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty" db:"completed_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Players []Player `json:"players,omitempty" db:"-"`
	Rounds  []Round  `json:"rounds,omitempty" db:"-"`
}

// Completed сообщает, находится ли турнир в терминальном состоянии.
func (t *Tournament) Completed() bool {
	return t.Status == StatusCompleted
}
