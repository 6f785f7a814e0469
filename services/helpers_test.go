package services

import (
	"testing"

	"github.com/kartliga/kart-league/models"
	"github.com/stretchr/testify/require"
)

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		name    string
		current models.TournamentStatus
		next    models.TournamentStatus
		want    bool
	}{
		{name: "accepting to in progress", current: models.StatusAcceptingPlayers, next: models.StatusInProgress, want: true},
		{name: "in progress to completed", current: models.StatusInProgress, next: models.StatusCompleted, want: true},
		{name: "accepting to completed skips a stage", current: models.StatusAcceptingPlayers, next: models.StatusCompleted, want: false},
		{name: "completed is terminal", current: models.StatusCompleted, next: models.StatusInProgress, want: false},
		{name: "completed cannot reopen", current: models.StatusCompleted, next: models.StatusAcceptingPlayers, want: false},
		{name: "in progress cannot go back", current: models.StatusInProgress, next: models.StatusAcceptingPlayers, want: false},
		{name: "same status is a no-op", current: models.StatusInProgress, next: models.StatusInProgress, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isValidStatusTransition(tt.current, tt.next))
		})
	}
}
