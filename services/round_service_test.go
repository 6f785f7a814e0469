package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kartliga/kart-league/models"
	"github.com/kartliga/kart-league/repositories"
	"github.com/stretchr/testify/require"
)

func TestBuildRoundResults(t *testing.T) {
	t.Run("positions follow ranking order", func(t *testing.T) {
		results := buildRoundResults(7, []int{30, 10, 20})

		require.Len(t, results, 3)
		require.Equal(t, models.RoundResult{RoundID: 7, PlayerID: 30, Position: 1, Points: 2}, results[0])
		require.Equal(t, models.RoundResult{RoundID: 7, PlayerID: 10, Position: 2, Points: 1}, results[1])
		require.Equal(t, models.RoundResult{RoundID: 7, PlayerID: 20, Position: 3, Points: 0}, results[2])
	})

	t.Run("round points sum by participant count", func(t *testing.T) {
		tests := []struct {
			players int
			wantSum int
		}{
			{players: 2, wantSum: 1},
			{players: 3, wantSum: 3},
			{players: 4, wantSum: 6},
			{players: 8, wantSum: 6},
		}
		for _, tt := range tests {
			ranking := make([]int, tt.players)
			for i := range ranking {
				ranking[i] = i + 1
			}
			sum := 0
			for _, result := range buildRoundResults(1, ranking) {
				sum += result.Points
			}
			require.Equal(t, tt.wantSum, sum, "players=%d", tt.players)
		}
	})
}

func TestValidateRanking(t *testing.T) {
	roster := []models.Player{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name    string
		ranking []int
		wantErr error
	}{
		{name: "full permutation", ranking: []int{3, 1, 2}, wantErr: nil},
		{name: "too short", ranking: []int{1}, wantErr: ErrNotEnoughPlayers},
		{name: "empty", ranking: nil, wantErr: ErrNotEnoughPlayers},
		{name: "duplicate player", ranking: []int{1, 2, 2}, wantErr: ErrRankingDuplicatePlayer},
		{name: "unknown player", ranking: []int{1, 2, 99}, wantErr: ErrRankingUnknownPlayer},
		{name: "missing participant", ranking: []int{1, 2}, wantErr: ErrRankingIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRanking(roster, tt.ranking)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func newRoundServiceWithMock(t *testing.T) (*RoundService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewRoundService(
		db,
		repositories.NewPostgresTournamentRepository(db),
		repositories.NewPostgresRoundRepository(db),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, mock
}

var tournamentColumns = []string{"id", "name", "status", "current_round", "created_at", "completed_at"}

func TestEndTournamentEarly(t *testing.T) {
	ctx := context.Background()

	t.Run("completes without creating result rows", func(t *testing.T) {
		svc, mock := newRoundServiceWithMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM tournaments WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(tournamentColumns).
				AddRow(5, "Summer Cup", "in_progress", 3, time.Now(), nil))
		mock.ExpectExec("UPDATE tournaments SET status").
			WithArgs("completed", sqlmock.AnyArg(), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tournament, err := svc.EndTournamentEarly(ctx, 5)
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, tournament.Status)
		require.NotNil(t, tournament.CompletedAt)

		// Кроме смены статуса других записей нет: раунд и результаты
		// при досрочном завершении не создаются.
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed tournament is rejected", func(t *testing.T) {
		svc, mock := newRoundServiceWithMock(t)
		finished := time.Now().Add(-time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM tournaments WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(tournamentColumns).
				AddRow(5, "Summer Cup", "completed", 3, time.Now().Add(-2*time.Hour), finished))
		mock.ExpectRollback()

		_, err := svc.EndTournamentEarly(ctx, 5)
		require.ErrorIs(t, err, ErrTournamentCompleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordRoundLifecycleGates(t *testing.T) {
	ctx := context.Background()
	input := RecordRoundInput{TrackName: "Forest", Ranking: []int{1, 2}}

	t.Run("completed tournament rejects new rounds", func(t *testing.T) {
		svc, mock := newRoundServiceWithMock(t)
		finished := time.Now().Add(-time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM tournaments WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(tournamentColumns).
				AddRow(5, "Summer Cup", "completed", 3, time.Now().Add(-2*time.Hour), finished))
		mock.ExpectRollback()

		_, err := svc.RecordRound(ctx, 5, input)
		require.ErrorIs(t, err, ErrTournamentCompleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tournament still accepting players rejects rounds", func(t *testing.T) {
		svc, mock := newRoundServiceWithMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM tournaments WHERE id = \$1 FOR UPDATE`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows(tournamentColumns).
				AddRow(5, "Summer Cup", "accepting_players", 0, time.Now(), nil))
		mock.ExpectRollback()

		_, err := svc.RecordRound(ctx, 5, input)
		require.ErrorIs(t, err, ErrTournamentNotInProgress)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown tournament", func(t *testing.T) {
		svc, mock := newRoundServiceWithMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM tournaments WHERE id = \$1 FOR UPDATE`).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(tournamentColumns))
		mock.ExpectRollback()

		_, err := svc.RecordRound(ctx, 99, input)
		require.ErrorIs(t, err, ErrTournamentNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
