package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// RotowireGame is the subset of a Rotowire record the pipeline uses
type RotowireGame struct {
	HomeName string   `json:"home_name"`
	HomeCity string   `json:"home_city"`
	VisName  string   `json:"vis_name"`
	VisCity  string   `json:"vis_city"`
	Day      string   `json:"day"` // MM_DD_YY
	BoxScore BoxScore `json:"box_score"`
}

// BoxScore holds per-player columns keyed by the player's row id
type BoxScore struct {
	PlayerName map[string]string `json:"PLAYER_NAME"`
}

// Players returns the roster in row order
func (g RotowireGame) Players() []string {
	ids := make([]string, 0, len(g.BoxScore.PlayerName))
	for id := range g.BoxScore.PlayerName {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA != nil || errB != nil {
			return ids[i] < ids[j]
		}
		return a < b
	})

	players := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := g.BoxScore.PlayerName[id]; name != "" {
			players = append(players, name)
		}
	}
	return players
}

// Weekday returns the day of week the game was played, or "" if Day does
// not parse
func (g RotowireGame) Weekday() string {
	t, err := time.Parse("01_02_06", g.Day)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// SameCity reports whether both teams share a city or a name. Such games
// are ambiguous for team corruption and are skipped.
func (g RotowireGame) SameCity() bool {
	return g.HomeCity == g.VisCity || g.HomeName == g.VisName
}

// RotowirePath returns the data file of a split, <split>.json
func RotowirePath(dir, split string) string {
	return filepath.Join(dir, split+".json")
}

// LoadRotowire reads a Rotowire split file
func LoadRotowire(path string) ([]RotowireGame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rotowire: %w", err)
	}

	var games []RotowireGame
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return games, nil
}

// Cities returns the distinct home and visitor cities, sorted
func Cities(games []RotowireGame) []string {
	seen := make(map[string]bool)
	var cities []string
	for _, g := range games {
		for _, c := range []string{g.HomeCity, g.VisCity} {
			if c != "" && !seen[c] {
				seen[c] = true
				cities = append(cities, c)
			}
		}
	}
	sort.Strings(cities)
	return cities
}
