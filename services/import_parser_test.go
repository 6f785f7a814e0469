package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSheetDate(t *testing.T) {
	tests := []struct {
		label  string
		want   time.Time
		wantOK bool
	}{
		{label: "21.08.22", want: time.Date(2022, time.August, 21, 0, 0, 0, 0, time.UTC), wantOK: true},
		{label: "01.01.23", want: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{label: " 05.09.22 ", want: time.Date(2022, time.September, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{label: "2022-08-21", wantOK: false},
		{label: "21.08.2022", wantOK: false},
		{label: "32.01.23", wantOK: false},
		{label: "15.13.22", wantOK: false},
		{label: "Sheet1", wantOK: false},
		{label: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := parseSheetDate(tt.label)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSheetInCutoff(t *testing.T) {
	// 21.08.22 — первый импортируемый день, всё раньше уже учтено.
	require.False(t, sheetInCutoff("20.08.22"))
	require.True(t, sheetInCutoff("21.08.22"))
	require.True(t, sheetInCutoff("22.08.22"))
	require.False(t, sheetInCutoff("not a date"))
}

func TestIsValidPlayerName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Alice", want: true},
		{name: "Иван", want: true},
		{name: "J.R.", want: true},
		{name: "", want: false},
		{name: "   ", want: false},
		{name: "12", want: false},
		{name: "3.", want: false},
		{name: "Total", want: false},
		{name: "PLAYERS", want: false},
		{name: "place", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isValidPlayerName(tt.name))
		})
	}
}

func TestParseSheetRows(t *testing.T) {
	t.Run("sums numeric cells and skips junk rows", func(t *testing.T) {
		rows := [][]string{
			{"Name", "R1", "R2"},
			{"Alice", "3", "2"},
			{"Bob", "1", "x"},
			{"Carol", "", ""},
			{"7", "5", "5"},
		}

		parsed, skipped := parseSheetRows(rows)

		require.Equal(t, []SheetRow{
			{PlayerName: "Alice", Points: 5},
			{PlayerName: "Bob", Points: 1},
		}, parsed)
		// Заголовок, строка без чисел и голый номер строки.
		require.Equal(t, 3, skipped)
	})

	t.Run("duplicate names merge", func(t *testing.T) {
		rows := [][]string{
			{"Alice", "3"},
			{"Alice", "2"},
		}

		parsed, skipped := parseSheetRows(rows)

		require.Equal(t, []SheetRow{{PlayerName: "Alice", Points: 5}}, parsed)
		require.Zero(t, skipped)
	})
}

func buildWorkbook(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	data := buildWorkbook(t, map[string][][]string{
		"20.08.22": {{"Alice", "3"}},
		"21.08.22": {{"Alice", "3"}, {"Bob", "1"}},
	})

	sheets, skippedSheets, skippedRows, err := parseWorkbook(data)
	require.NoError(t, err)

	// Лист до отсечки пропущен целиком.
	require.Equal(t, 1, skippedSheets)
	require.Zero(t, skippedRows)
	require.Len(t, sheets, 1)
	require.Equal(t, "21.08.22", sheets[0].Label)
	require.Equal(t, []SheetRow{
		{PlayerName: "Alice", Points: 3},
		{PlayerName: "Bob", Points: 1},
	}, sheets[0].Rows)
}

func TestParseCSV(t *testing.T) {
	t.Run("label within cutoff", func(t *testing.T) {
		data := []byte("Alice,3,2\nBob,1,0\n")

		sheets, skippedSheets, skippedRows, err := parseCSV(data, "01.09.22")
		require.NoError(t, err)
		require.Zero(t, skippedSheets)
		require.Zero(t, skippedRows)
		require.Len(t, sheets, 1)
		require.Equal(t, []SheetRow{
			{PlayerName: "Alice", Points: 5},
			{PlayerName: "Bob", Points: 1},
		}, sheets[0].Rows)
	})

	t.Run("label before cutoff skips the file", func(t *testing.T) {
		sheets, skippedSheets, _, err := parseCSV([]byte("Alice,3\n"), "20.08.22")
		require.NoError(t, err)
		require.Empty(t, sheets)
		require.Equal(t, 1, skippedSheets)
	})

	t.Run("label that is not a date skips the file", func(t *testing.T) {
		sheets, skippedSheets, _, err := parseCSV([]byte("Alice,3\n"), "results")
		require.NoError(t, err)
		require.Empty(t, sheets)
		require.Equal(t, 1, skippedSheets)
	})
}
