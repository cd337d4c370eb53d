// Package gamedata loads the ground truth about games: template fact logs,
// Rotowire box scores and the games CSV used at decode time.
package gamedata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ppiankov/boxcheck/internal/model"
)

// TemplateGame is one game block of a template log, facts in file order
type TemplateGame struct {
	Facts []model.FactStatement
}

// Entities returns the distinct fact keys of a category, in first-seen order
func (g TemplateGame) Entities(category model.FactCategory) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range g.Facts {
		if f.Category != category || f.Entity == "" || seen[f.Entity] {
			continue
		}
		seen[f.Entity] = true
		out = append(out, f.Entity)
	}
	return out
}

// TemplateLogPath returns the log file of a split, log_<split>.txt
func TemplateLogPath(dir, split string) string {
	return filepath.Join(dir, "log_"+split+".txt")
}

// LoadTemplateLog reads a template log file
func LoadTemplateLog(path string) ([]TemplateGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template log: %w", err)
	}
	defer func() { _ = f.Close() }()

	games, err := ParseTemplateLog(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return games, nil
}

// ParseTemplateLog reads game blocks. A block starts with a "=== Game" line;
// "Game Data", "Player Data" and "Team Data" lines switch the category of
// the fact lines that follow. Lines before the first category are ignored.
func ParseTemplateLog(r io.Reader) ([]TemplateGame, error) {
	var (
		games    []TemplateGame
		current  *TemplateGame
		category model.FactCategory
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, "=== Game"):
			if current != nil {
				games = append(games, *current)
			}
			current = &TemplateGame{}
			category = ""
		case strings.Contains(line, "Game Data"):
			category = model.FactCategoryGame
		case strings.Contains(line, "Player Data"):
			category = model.FactCategoryPlayer
		case strings.Contains(line, "Team Data"):
			category = model.FactCategoryTeam
		case strings.TrimSpace(line) == "" || category == "" || current == nil:
			continue
		default:
			current.Facts = append(current.Facts, model.FactStatement{
				Text:     line,
				Entity:   LeadingEntity(line),
				Category: category,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if current != nil {
		games = append(games, *current)
	}
	return games, nil
}

// LeadingEntity returns the run of capitalised words a fact starts with,
// which names the team or player the fact is about
func LeadingEntity(sentence string) string {
	var words []string
	for _, tok := range strings.Fields(sentence) {
		first := []rune(tok)[0]
		if !unicode.IsUpper(first) {
			break
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}
