package ner

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/boxcheck/internal/corrupt"
	"github.com/ppiankov/boxcheck/internal/model"
)

var (
	percentToken  = regexp.MustCompile(`^\d+(\.\d+)?%$`)
	ordinalToken  = regexp.MustCompile(`^\d+(st|nd|rd|th)$`)
	cardinalToken = regexp.MustCompile(`^\d+([.,]\d+)*$|^\d+-\d+$`)
)

type phrase struct {
	tokens []string
	typ    model.EntityType
}

// Gazetteer recognizes the names a game's facts can contradict: roster
// players, team names, cities and weekdays, plus numbers, ordinals and
// percentages. Longer names win over shorter ones at the same position.
type Gazetteer struct {
	phrases []phrase
}

// NewGazetteer builds a recognizer for one game. cities extends the game's
// own cities.
func NewGazetteer(game *model.GameRecord, cities []string) *Gazetteer {
	g := &Gazetteer{}
	seen := make(map[string]bool)
	add := func(name string, typ model.EntityType) {
		toks := strings.Fields(name)
		if len(toks) == 0 || seen[name] {
			return
		}
		seen[name] = true
		g.phrases = append(g.phrases, phrase{tokens: toks, typ: typ})
	}

	if game != nil {
		for _, p := range game.Players() {
			add(p, model.EntityPerson)
		}
		for _, t := range game.TeamNames() {
			add(t, model.EntityOrg)
		}
		add(game.HomeCity(), model.EntityPlace)
		add(game.AwayCity(), model.EntityPlace)
	}
	for _, c := range cities {
		add(c, model.EntityPlace)
	}
	for _, d := range corrupt.Weekdays {
		add(d, model.EntityDate)
	}

	sort.SliceStable(g.phrases, func(i, j int) bool {
		return len(g.phrases[i].tokens) > len(g.phrases[j].tokens)
	})
	return g
}

// Factory returns a gazetteer factory over a fixed city list
func GazetteerFactory(cities []string) Factory {
	return func(game *model.GameRecord) Recognizer {
		return NewGazetteer(game, cities)
	}
}

// Recognize implements Recognizer
func (g *Gazetteer) Recognize(ctx context.Context, tokens []string) ([]model.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := make([]string, len(tokens))
	for i, t := range tokens {
		clean[i] = trimPunct(t)
	}

	var ents []model.Entity
	for i := 0; i < len(tokens); {
		if p, ok := g.match(clean, i); ok {
			ents = append(ents, span(tokens, i, i+len(p.tokens), p.typ))
			i += len(p.tokens)
			continue
		}
		if typ, ok := numberType(clean[i]); ok {
			ents = append(ents, span(tokens, i, i+1, typ))
		}
		i++
	}
	return ents, nil
}

func (g *Gazetteer) match(clean []string, i int) (phrase, bool) {
	for _, p := range g.phrases {
		if i+len(p.tokens) > len(clean) {
			continue
		}
		ok := true
		for k, t := range p.tokens {
			if clean[i+k] != t {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return phrase{}, false
}

func numberType(tok string) (model.EntityType, bool) {
	if tok == "" {
		return "", false
	}
	if n, ok := corrupt.NormalizeNumber(tok); ok {
		tok = n
	}
	switch {
	case percentToken.MatchString(tok):
		return model.EntityPercent, true
	case ordinalToken.MatchString(tok):
		return model.EntityOrdinal, true
	case cardinalToken.MatchString(tok):
		return model.EntityCardinal, true
	}
	return "", false
}

func trimPunct(tok string) string {
	return strings.Trim(tok, ".,;:!?\"()")
}
