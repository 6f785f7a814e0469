package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportFileUnsupportedExtension(t *testing.T) {
	svc := &ImportService{}
	ctx := context.Background()

	tests := []string{"results.xls", "results.pdf", "results.txt", "results"}
	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			_, err := svc.ImportFile(ctx, filename, []byte("data"))
			require.ErrorIs(t, err, ErrImportUnsupportedFile)
		})
	}
}

func TestImportBulkValidation(t *testing.T) {
	svc := &ImportService{}
	ctx := context.Background()

	t.Run("missing tournament name", func(t *testing.T) {
		_, err := svc.ImportBulk(ctx, BulkImportPayload{TournamentName: "  "})
		require.ErrorIs(t, err, ErrTournamentNameRequired)
	})

	t.Run("all labels before cutoff", func(t *testing.T) {
		_, err := svc.ImportBulk(ctx, BulkImportPayload{
			TournamentName: "Old season",
			Players: []BulkImportPlayer{
				{PlayerName: "Alice", Rounds: map[string]int{"20.08.22": 5, "01.01.20": 3}},
			},
		})
		require.ErrorIs(t, err, ErrImportEmpty)
	})

	t.Run("no valid player names", func(t *testing.T) {
		_, err := svc.ImportBulk(ctx, BulkImportPayload{
			TournamentName: "Season",
			Players: []BulkImportPlayer{
				{PlayerName: "12", Rounds: map[string]int{"21.08.22": 5}},
			},
		})
		require.ErrorIs(t, err, ErrImportEmpty)
	})
}
