package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Листы именуются датой заезда в формате DD.MM.YY. Листы до даты
// отсечки целиком пропускаются: более ранние данные уже учтены в
// исторических итогах.
var sheetDatePattern = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{2})$`)

var importCutoffDate = time.Date(2022, time.August, 21, 0, 0, 0, 0, time.UTC)

// parseSheetDate разбирает метку листа формата DD.MM.YY.
func parseSheetDate(label string) (time.Time, bool) {
	m := sheetDatePattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date нормализует переполнение дня (32.01 → 01.02), это не
	// совпадение с меткой, а мусор.
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return date, true
}

// sheetInCutoff сообщает, подлежит ли лист импорту.
func sheetInCutoff(label string) bool {
	date, ok := parseSheetDate(label)
	return ok && !date.Before(importCutoffDate)
}

// Заголовочные ячейки, которые встречаются в колонке имён выгрузок и
// не являются игроками.
var headerEchoes = map[string]bool{
	"name": true, "player": true, "players": true,
	"total": true, "sum": true, "points": true, "place": true,
}

var pureNumberPattern = regexp.MustCompile(`^\d+\.?$`)

// isValidPlayerName отсекает мусорные строки выгрузки: пустые ячейки,
// голые номера строк и эхо заголовка.
func isValidPlayerName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if pureNumberPattern.MatchString(name) {
		return false
	}
	if headerEchoes[strings.ToLower(name)] {
		return false
	}
	return true
}

// SheetRow — одна валидная строка листа: имя игрока и сумма числовых
// ячеек строки.
type SheetRow struct {
	PlayerName string
	Points     int
}

// parseSheetRows превращает строки листа в (игрок, очки). Первая ячейка —
// имя, остальные числовые ячейки суммируются; нечисловые ячейки
// пропускаются, строка без единой числовой ячейки отбрасывается.
// Повторное имя в листе складывается с уже накопленным.
func parseSheetRows(rows [][]string) (parsed []SheetRow, skipped int) {
	index := make(map[string]int)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if !isValidPlayerName(name) {
			skipped++
			continue
		}
		points := 0
		numericCells := 0
		for _, cell := range row[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			value, err := strconv.Atoi(cell)
			if err != nil {
				// Нечисловая ячейка очков пропускается, строка остаётся.
				continue
			}
			points += value
			numericCells++
		}
		if numericCells == 0 {
			skipped++
			continue
		}
		if i, ok := index[name]; ok {
			parsed[i].Points += points
			continue
		}
		index[name] = len(parsed)
		parsed = append(parsed, SheetRow{PlayerName: name, Points: points})
	}
	return parsed, skipped
}

// ImportSheet — один день (лист) выгрузки, готовый к материализации.
type ImportSheet struct {
	Label string
	Date  time.Time
	Rows  []SheetRow
}

// parseWorkbook читает XLSX и возвращает листы, прошедшие отсечку.
func parseWorkbook(data []byte) (sheets []ImportSheet, skippedSheets, skippedRows int, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	for _, sheetName := range f.GetSheetList() {
		date, ok := parseSheetDate(sheetName)
		if !ok || date.Before(importCutoffDate) {
			skippedSheets++
			continue
		}
		rows, rowsErr := f.GetRows(sheetName)
		if rowsErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to read sheet %q: %w", sheetName, rowsErr)
		}
		parsed, skipped := parseSheetRows(rows)
		skippedRows += skipped
		if len(parsed) == 0 {
			skippedSheets++
			continue
		}
		sheets = append(sheets, ImportSheet{Label: sheetName, Date: date, Rows: parsed})
	}
	return sheets, skippedSheets, skippedRows, nil
}

// parseCSV читает CSV как один лист; меткой служит имя файла без
// расширения, к нему применяется то же правило отсечки.
func parseCSV(data []byte, label string) (sheets []ImportSheet, skippedSheets, skippedRows int, err error) {
	date, ok := parseSheetDate(label)
	if !ok || date.Before(importCutoffDate) {
		return nil, 1, 0, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to read CSV: %w", readErr)
		}
		rows = append(rows, record)
	}

	parsed, skipped := parseSheetRows(rows)
	if len(parsed) == 0 {
		return nil, 1, skipped, nil
	}
	return []ImportSheet{{Label: label, Date: date, Rows: parsed}}, 0, skipped, nil
}
