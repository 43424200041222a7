package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cardseer/internal/cards"
)

// ErrUnsupportedFormat is returned for import files that are neither JSON
// nor CSV. No partial import happens.
var ErrUnsupportedFormat = errors.New("unsupported import format: use .json or .csv")

// ImportResult is a completed local-file import.
type ImportResult struct {
	Cards   []cards.Card
	Dropped int
}

// ImportFile parses a local .json or .csv card file. Imported cards are
// not core-set; they extend the candidate pool's surrounding collection
// only.
func ImportFile(path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return importJSON(data)
	case ".csv":
		return importCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func importJSON(data []byte) (*ImportResult, error) {
	var pack PackFile
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse import JSON: %w", err)
	}

	result := &ImportResult{}
	for _, raw := range pack.Cards {
		card, ok := normalizeRecord(raw, false)
		if !ok {
			result.Dropped++
			continue
		}
		result.Cards = append(result.Cards, card)
	}
	return result, nil
}

// importCSV parses rows of id,race,level,number,value under a header row.
// The CSV path validates level into [1,6] rather than clamping; rows
// outside that range are dropped.
func importCSV(data []byte) (*ImportResult, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse import CSV: %w", err)
	}
	if len(rows) == 0 {
		return &ImportResult{}, nil
	}

	idx := map[string]int{"id": -1, "race": -1, "level": -1, "number": -1, "value": -1}
	for i, col := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(col))
		if _, known := idx[name]; known {
			idx[name] = i
		}
	}

	field := func(row []string, name string) string {
		i := idx[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &ImportResult{}
	for _, row := range rows[1:] {
		race, ok := cards.NormalizeRace(field(row, "race"))
		if !ok {
			result.Dropped++
			continue
		}
		level, err := strconv.Atoi(field(row, "level"))
		if err != nil || level < 1 || level > cards.MaxLevel {
			result.Dropped++
			continue
		}
		number, err := strconv.ParseFloat(field(row, "number"), 64)
		if err != nil {
			result.Dropped++
			continue
		}
		value, err := strconv.ParseFloat(field(row, "value"), 64)
		if err != nil {
			result.Dropped++
			continue
		}

		id := field(row, "id")
		if id == "" {
			id = fmt.Sprintf("%s-%v", race, number)
		}

		result.Cards = append(result.Cards, cards.Card{
			ID:     id,
			Race:   race,
			Level:  level,
			Number: number,
			Value:  value,
		})
	}
	return result, nil
}
