package models

import "time"

// ChatMessage — сообщение в чате турнира.
type ChatMessage struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Author       string    `json:"author" db:"author"`
	Body         string    `json:"body" db:"body"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
