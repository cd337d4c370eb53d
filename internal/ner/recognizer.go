// Package ner finds named entities in tokenized sentences, either through a
// remote NER service or with a rule-based gazetteer built from a game's facts.
package ner

import (
	"context"
	"sort"
	"strings"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Recognizer returns the entities of a tokenized sentence, in token order,
// with non-overlapping spans
type Recognizer interface {
	Recognize(ctx context.Context, tokens []string) ([]model.Entity, error)
}

// Factory returns the recognizer to use for a game
type Factory func(game *model.GameRecord) Recognizer

// Static returns a factory that ignores the game
func Static(r Recognizer) Factory {
	return func(*model.GameRecord) Recognizer { return r }
}

// normalize sorts entities by start and drops any that overlap an earlier one
func normalize(ents []model.Entity) []model.Entity {
	sort.SliceStable(ents, func(i, j int) bool {
		if ents[i].Start != ents[j].Start {
			return ents[i].Start < ents[j].Start
		}
		return ents[i].End > ents[j].End
	})

	out := ents[:0]
	end := 0
	for _, e := range ents {
		if e.Start < end || e.End <= e.Start {
			continue
		}
		out = append(out, e)
		end = e.End
	}
	return out
}

func span(tokens []string, start, end int, typ model.EntityType) model.Entity {
	toks := append([]string(nil), tokens[start:end]...)
	return model.Entity{
		Text:   strings.Join(toks, " "),
		Type:   typ,
		Start:  start,
		End:    end,
		Tokens: toks,
	}
}
