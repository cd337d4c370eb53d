package gamedata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// GameText is one row of the games CSV: a generated summary to check
type GameText struct {
	TextID    string
	GameIndex int // Raw Rotowire index
	Text      string
	Extra     map[string]string // Remaining columns by header name
}

const (
	colTextID = 0
	colGame   = 3
	colText   = 4
)

// ReadGamesFile reads a games CSV file
func ReadGamesFile(path string) ([]GameText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open games csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadGames(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadGames parses a games CSV with a header row
func ReadGames(r io.Reader) ([]GameText, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []GameText
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= colText {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, colText+1, len(rec))
		}

		idx, err := strconv.Atoi(strings.TrimSpace(rec[colGame]))
		if err != nil {
			return nil, fmt.Errorf("line %d: game index %q: %w", line, rec[colGame], err)
		}

		extra := make(map[string]string)
		for i, v := range rec {
			if i == colTextID || i == colGame || i == colText || i >= len(header) {
				continue
			}
			extra[header[i]] = v
		}

		rows = append(rows, GameText{
			TextID:    rec[colTextID],
			GameIndex: idx,
			Text:      rec[colText],
			Extra:     extra,
		})
	}
	return rows, nil
}
