// Package retrieve selects the facts about a game that are most similar to
// a sentence, to serve as its context.
package retrieve

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/boxcheck/internal/embed"
	"github.com/ppiankov/boxcheck/internal/model"
)

// ScoredFact is a fact with its similarity to the query sentence
type ScoredFact struct {
	Fact  model.FactStatement
	Score float64
	Index int // Position in the candidate list
}

// Options tunes a retrieval call
type Options struct {
	// Exclude drops facts whose text equals the query sentence
	Exclude bool
}

// Retriever ranks facts by cosine similarity of their embeddings
type Retriever struct {
	embedder embed.Embedder
}

// New creates a retriever
func New(embedder embed.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve returns the count facts most similar to sentence, best first.
// Ties keep the facts' input order. count <= 0 returns nothing; a count
// above the number of facts returns them all.
func (r *Retriever) Retrieve(ctx context.Context, sentence string, facts []model.FactStatement, count int, opts Options) ([]ScoredFact, error) {
	if count <= 0 || len(facts) == 0 {
		return nil, nil
	}

	candidates := make([]ScoredFact, 0, len(facts))
	texts := make([]string, 0, len(facts))
	for i, f := range facts {
		if opts.Exclude && strings.TrimSpace(f.Text) == strings.TrimSpace(sentence) {
			continue
		}
		candidates = append(candidates, ScoredFact{Fact: f, Index: i})
		texts = append(texts, f.Text)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	query, err := r.embedder.Embed(ctx, []string{sentence})
	if err != nil {
		return nil, fmt.Errorf("embed sentence: %w", err)
	}
	if len(query) != 1 {
		return nil, fmt.Errorf("embed sentence: got %d vectors", len(query))
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed facts: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed facts: got %d vectors for %d facts", len(vectors), len(texts))
	}

	scores, err := CosineScores(query[0], vectors)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].Score = scores[i]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if count > len(candidates) {
		count = len(candidates)
	}
	return candidates[:count], nil
}

// CosineScores computes the cosine similarity of query against each vector.
// A zero vector scores 0.
func CosineScores(query []float32, vectors [][]float32) ([]float64, error) {
	qn := norm(query)
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("vector %d has dimension %d, query has %d", i, len(v), len(query))
		}
		vn := norm(v)
		if qn == 0 || vn == 0 {
			continue
		}
		var dot float64
		for k := range v {
			dot += float64(query[k]) * float64(v[k])
		}
		scores[i] = dot / (qn * vn)
	}
	return scores, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Texts returns the retrieved fact texts in rank order
func Texts(scored []ScoredFact) []string {
	texts := make([]string, len(scored))
	for i, s := range scored {
		texts[i] = s.Fact.Text
	}
	return texts
}

// ContextText joins the retrieved texts with single spaces
func ContextText(scored []ScoredFact) string {
	return strings.Join(Texts(scored), " ")
}
