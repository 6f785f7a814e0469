package models

// RoundBreakdown — строка пораундовой детализации игрока,
// упорядочивается по номеру раунда.
type RoundBreakdown struct {
	RoundNumber int    `json:"round_number"`
	TrackName   string `json:"track_name"`
	Position    int    `json:"position"`
	Points      int    `json:"points"`
}

// StandingEntry — позиция игрока в таблице турнира.
type StandingEntry struct {
	Player      Player           `json:"player"`
	TotalPoints int              `json:"total_points"`
	Breakdown   []RoundBreakdown `json:"per_round_breakdown"`
}

// AllTimeEntry — позиция игрока в сводной таблице за всё время.
// Исторические очки добавляются поверх ручных как непрозрачная надбавка,
// средние считаются только по ручным раундам.
type AllTimeEntry struct {
	PlayerName            string  `json:"player_name"`
	ManualPoints          int     `json:"manual_points"`
	ManualRoundsPlayed    int     `json:"manual_rounds_played"`
	HistoricalPoints      int     `json:"historical_points"`
	HistoricalTournaments int     `json:"historical_tournaments_played"`
	TotalPoints           int     `json:"total_points"`
	AveragePointsPerRound float64 `json:"average_points_per_round"`
}
