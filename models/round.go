package models

import "time"

// Round — один заезд внутри турнира. RoundNumber строго возрастает
// в рамках турнира, начинается с 1 и не переиспользуется.
type Round struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int       `json:"round_number" db:"round_number"`
	TrackName    string    `json:"track_name" db:"track_name"`
	TrackNumber  string    `json:"track_number" db:"track_number"`
	Creator      string    `json:"creator" db:"creator"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Results []RoundResult `json:"results,omitempty" db:"-"`
}

// RoundResult — результат одного игрока в раунде. Для раунда с N
// участниками позиции образуют перестановку 1..N.
type RoundResult struct {
	RoundID  int `json:"round_id" db:"round_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	Position int `json:"position" db:"position"`
	Points   int `json:"points" db:"points"`
}
