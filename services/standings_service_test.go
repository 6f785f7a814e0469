package services

import (
	"testing"

	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/repositories"
	"github.com/stretchr/testify/require"
)

func TestAssembleStandings(t *testing.T) {
	alice := models.Player{ID: 1, Name: "Alice"}
	bob := models.Player{ID: 2, Name: "Bob"}
	carol := models.Player{ID: 3, Name: "Carol"}
	roster := []models.Player{alice, bob, carol}
	playersByID := map[int]models.Player{1: alice, 2: bob, 3: carol}

	t.Run("points accumulate across rounds and sort descending", func(t *testing.T) {
		rounds := []models.Round{
			{ID: 10, RoundNumber: 1, TrackName: "Forest"},
			{ID: 11, RoundNumber: 2, TrackName: "Desert"},
		}
		// Раунд 1: Alice, Bob, Carol. Раунд 2: Carol, Alice, Bob.
		results := []models.RoundResult{
			{RoundID: 10, PlayerID: 1, Position: 1, Points: 2},
			{RoundID: 10, PlayerID: 2, Position: 2, Points: 1},
			{RoundID: 10, PlayerID: 3, Position: 3, Points: 0},
			{RoundID: 11, PlayerID: 3, Position: 1, Points: 2},
			{RoundID: 11, PlayerID: 1, Position: 2, Points: 1},
			{RoundID: 11, PlayerID: 2, Position: 3, Points: 0},
		}

		entries := assembleStandings(roster, rounds, results, playersByID)

		require.Len(t, entries, 3)
		require.Equal(t, "Alice", entries[0].Player.Name)
		require.Equal(t, 3, entries[0].TotalPoints)
		require.Equal(t, "Carol", entries[1].Player.Name)
		require.Equal(t, 2, entries[1].TotalPoints)
		require.Equal(t, "Bob", entries[2].Player.Name)
		require.Equal(t, 1, entries[2].TotalPoints)
	})

	t.Run("ties keep roster join order", func(t *testing.T) {
		rounds := []models.Round{{ID: 10, RoundNumber: 1}}
		// Очки только у Alice: Bob и Carol равны на нуле.
		results := []models.RoundResult{
			{RoundID: 10, PlayerID: 1, Position: 1, Points: 2},
		}

		entries := assembleStandings(roster, rounds, results, playersByID)

		require.Len(t, entries, 3)
		require.Equal(t, "Alice", entries[0].Player.Name)
		// Bob и Carol оба с нулём: порядок вступления сохраняется.
		require.Equal(t, "Bob", entries[1].Player.Name)
		require.Equal(t, "Carol", entries[2].Player.Name)
	})

	t.Run("removed player with results stays in the table", func(t *testing.T) {
		rounds := []models.Round{{ID: 10, RoundNumber: 1, TrackName: "Forest"}}
		results := []models.RoundResult{
			{RoundID: 10, PlayerID: 1, Position: 1, Points: 2},
			{RoundID: 10, PlayerID: 2, Position: 2, Points: 1},
			{RoundID: 10, PlayerID: 3, Position: 3, Points: 0},
		}
		// Carol убрана из состава после заезда.
		trimmedRoster := []models.Player{alice, bob}

		entries := assembleStandings(trimmedRoster, rounds, results, playersByID)

		require.Len(t, entries, 3)
		names := []string{entries[0].Player.Name, entries[1].Player.Name, entries[2].Player.Name}
		require.Contains(t, names, "Carol")
		for _, entry := range entries {
			if entry.Player.Name == "Carol" {
				require.Equal(t, 0, entry.TotalPoints)
				require.Len(t, entry.Breakdown, 1)
			}
		}
	})

	t.Run("breakdown is ordered by round number", func(t *testing.T) {
		rounds := []models.Round{
			{ID: 11, RoundNumber: 2, TrackName: "Desert"},
			{ID: 10, RoundNumber: 1, TrackName: "Forest"},
		}
		results := []models.RoundResult{
			{RoundID: 11, PlayerID: 1, Position: 1, Points: 2},
			{RoundID: 10, PlayerID: 1, Position: 2, Points: 1},
		}

		entries := assembleStandings([]models.Player{alice}, rounds, results, playersByID)

		require.Len(t, entries, 1)
		require.Len(t, entries[0].Breakdown, 2)
		require.Equal(t, 1, entries[0].Breakdown[0].RoundNumber)
		require.Equal(t, "Forest", entries[0].Breakdown[0].TrackName)
		require.Equal(t, 2, entries[0].Breakdown[1].RoundNumber)
	})

	t.Run("empty tournament yields roster with zeros", func(t *testing.T) {
		entries := assembleStandings(roster, nil, nil, playersByID)

		require.Len(t, entries, 3)
		for i, entry := range entries {
			require.Equal(t, roster[i].Name, entry.Player.Name)
			require.Equal(t, 0, entry.TotalPoints)
			require.Empty(t, entry.Breakdown)
		}
	})
}

func TestAssembleAllTime(t *testing.T) {
	t.Run("merges manual and historical totals", func(t *testing.T) {
		manual := map[string]repositories.PlayerTally{
			"Alice": {Points: 10, RoundsPlayed: 4},
			"Bob":   {Points: 6, RoundsPlayed: 3},
		}
		historical := map[string]repositories.HistoricalTally{
			"Alice": {Points: 20, TournamentsPlayed: 2},
			"Dave":  {Points: 15, TournamentsPlayed: 1},
		}

		entries := assembleAllTime(manual, historical)

		require.Len(t, entries, 3)
		require.Equal(t, "Alice", entries[0].PlayerName)
		require.Equal(t, 30, entries[0].TotalPoints)
		require.InDelta(t, 2.5, entries[0].AveragePointsPerRound, 1e-9)

		require.Equal(t, "Dave", entries[1].PlayerName)
		require.Equal(t, 15, entries[1].TotalPoints)

		require.Equal(t, "Bob", entries[2].PlayerName)
		require.InDelta(t, 2.0, entries[2].AveragePointsPerRound, 1e-9)
	})

	t.Run("historical-only player has zero average", func(t *testing.T) {
		historical := map[string]repositories.HistoricalTally{
			"Dave": {Points: 15, TournamentsPlayed: 1},
		}

		entries := assembleAllTime(nil, historical)

		require.Len(t, entries, 1)
		require.Equal(t, 0, entries[0].ManualRoundsPlayed)
		require.Zero(t, entries[0].AveragePointsPerRound)
	})

	t.Run("equal totals ordered by name", func(t *testing.T) {
		manual := map[string]repositories.PlayerTally{
			"Zoe": {Points: 5, RoundsPlayed: 2},
			"Ann": {Points: 5, RoundsPlayed: 2},
		}

		entries := assembleAllTime(manual, nil)

		require.Len(t, entries, 2)
		require.Equal(t, "Ann", entries[0].PlayerName)
		require.Equal(t, "Zoe", entries[1].PlayerName)
	})
}
