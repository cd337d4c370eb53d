package model

import "strings"

// FactCategory tells which section of the template log a fact came from
type FactCategory string

const (
	FactCategoryGame   FactCategory = "game"
	FactCategoryTeam   FactCategory = "team"
	FactCategoryPlayer FactCategory = "player"
)

// FactStatement is one natural-language fact about a game
type FactStatement struct {
	Text     string       `json:"text"`
	Entity   string       `json:"entity,omitempty"`   // Team or player the fact is about
	Category FactCategory `json:"category,omitempty"` // game, team, player
}

// GameRecord holds the ground truth for one game.
// Build it with NewGameRecord; the accessors return copies so a record
// can be shared between goroutines.
type GameRecord struct {
	index    int
	homeName string
	homeCity string
	awayName string
	awayCity string
	day      string
	players  []string
	facts    []FactStatement
}

// GameInfo carries the scalar fields of a GameRecord
type GameInfo struct {
	Index    int
	HomeName string
	HomeCity string
	AwayName string
	AwayCity string
	Day      string
}

// NewGameRecord creates an immutable game record
func NewGameRecord(info GameInfo, players []string, facts []FactStatement) *GameRecord {
	return &GameRecord{
		index:    info.Index,
		homeName: info.HomeName,
		homeCity: info.HomeCity,
		awayName: info.AwayName,
		awayCity: info.AwayCity,
		day:      info.Day,
		players:  append([]string(nil), players...),
		facts:    append([]FactStatement(nil), facts...),
	}
}

func (g *GameRecord) Index() int       { return g.index }
func (g *GameRecord) HomeName() string { return g.homeName }
func (g *GameRecord) HomeCity() string { return g.homeCity }
func (g *GameRecord) AwayName() string { return g.awayName }
func (g *GameRecord) AwayCity() string { return g.awayCity }
func (g *GameRecord) Day() string      { return g.day }

// HomeTeam returns the full home team name (city + name)
func (g *GameRecord) HomeTeam() string {
	return strings.TrimSpace(g.homeCity + " " + g.homeName)
}

// AwayTeam returns the full away team name (city + name)
func (g *GameRecord) AwayTeam() string {
	return strings.TrimSpace(g.awayCity + " " + g.awayName)
}

// Players returns a copy of the roster
func (g *GameRecord) Players() []string {
	return append([]string(nil), g.players...)
}

// Facts returns a copy of the fact statements in insertion order
func (g *GameRecord) Facts() []FactStatement {
	return append([]FactStatement(nil), g.facts...)
}

// FactTexts returns the raw text of every fact
func (g *GameRecord) FactTexts() []string {
	texts := make([]string, len(g.facts))
	for i, f := range g.facts {
		texts[i] = f.Text
	}
	return texts
}

// TeamNames returns every surface form the two teams are known by
func (g *GameRecord) TeamNames() []string {
	var names []string
	for _, n := range []string{g.HomeTeam(), g.AwayTeam(), g.homeName, g.awayName} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// OtherTeam maps a team name to the opposing team's name in the same form
// (full name to full name, nickname to nickname).
func (g *GameRecord) OtherTeam(name string) (string, bool) {
	switch name {
	case "":
		return "", false
	case g.HomeTeam():
		return g.AwayTeam(), true
	case g.AwayTeam():
		return g.HomeTeam(), true
	case g.homeName:
		return g.awayName, true
	case g.awayName:
		return g.homeName, true
	}
	return "", false
}

// HasPlayer reports whether name is on the game's roster
func (g *GameRecord) HasPlayer(name string) bool {
	for _, p := range g.players {
		if p == name {
			return true
		}
	}
	return false
}
