// Package corrupt injects factual errors into sentences about a game by
// rewriting named entities, producing a token sequence and a parallel
// sequence of error labels.
package corrupt

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Options configures a Corruptor
type Options struct {
	Rate        float64 // Probability that an entity is corrupted
	MaxRatio    float64 // Cap on corrupted entities as a share of all entities
	StdDev      float64 // Gaussian spread for number resampling
	MaxAttempts int     // Bound on resampling loops
	Labels      model.LabelSet
	Cities      []string
	Rand        *rand.Rand
	Logger      *zap.Logger
}

// DefaultOptions returns the settings used for the training data
func DefaultOptions() Options {
	return Options{
		Rate:        0.5,
		MaxRatio:    0.5,
		StdDev:      3,
		MaxAttempts: 1000,
		Labels:      model.BasicLabels(),
		Cities:      DefaultCities(),
	}
}

// Corruptor rewrites entities of a sentence. It keeps no state between calls
// apart from its random source.
type Corruptor struct {
	opts      Options
	resampler Resampler
	log       *zap.Logger
}

// Sentence is a tokenized sentence with its detected entities in document order
type Sentence struct {
	Tokens   []string
	Entities []model.Entity
}

// Result is a corrupted sentence
type Result struct {
	Tokens []string
	Labels []model.Label
	Stats  Stats
}

// Changed reports whether any token was corrupted
func (r Result) Changed() bool {
	return anyError(r.Labels)
}

// New creates a corruptor
func New(opts Options) (*Corruptor, error) {
	if opts.Rate < 0 || opts.Rate > 1 {
		return nil, fmt.Errorf("modification rate must be within [0, 1], got %v", opts.Rate)
	}
	if opts.MaxRatio < 0 || opts.MaxRatio > 1 {
		return nil, fmt.Errorf("max ratio must be within [0, 1], got %v", opts.MaxRatio)
	}
	for _, l := range []model.Label{model.LabelO, model.LabelNumber, model.LabelName} {
		if !opts.Labels.Contains(l) {
			return nil, fmt.Errorf("label set %q lacks %s", opts.Labels.Name(), l)
		}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1000
	}
	if opts.StdDev <= 0 {
		opts.StdDev = 3
	}
	if len(opts.Cities) == 0 {
		opts.Cities = DefaultCities()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(42, 42))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Corruptor{
		opts: opts,
		resampler: Resampler{
			Rand:        opts.Rand,
			StdDev:      opts.StdDev,
			MaxAttempts: opts.MaxAttempts,
		},
		log: opts.Logger,
	}, nil
}

// Cap returns the maximum number of entities corrupted in a sentence with n entities
func (c *Corruptor) Cap(n int) int {
	return int(math.Floor(float64(n) * c.opts.MaxRatio))
}

// Corrupt rewrites a capped subset of the sentence's entities. Tokens outside
// corrupted entities keep label O. An error aborts the whole sentence.
func (c *Corruptor) Corrupt(s Sentence, game *model.GameRecord) (Result, error) {
	if err := checkSpans(s); err != nil {
		return Result{}, err
	}

	stats := newStats()
	stats.Entities = len(s.Entities)
	limit := c.Cap(len(s.Entities))

	tokens := make([]string, 0, len(s.Tokens))
	labels := make([]model.Label, 0, len(s.Tokens))
	keep := func(toks []string) {
		for _, t := range toks {
			tokens = append(tokens, t)
			labels = append(labels, model.LabelO)
		}
	}

	cursor := 0
	for _, e := range s.Entities {
		keep(s.Tokens[cursor:e.Start])
		cursor = e.End
		span := s.Tokens[e.Start:e.End]

		policy := Classify(e, game)
		switch {
		case policy == PolicyUnknown:
			stats.Unknown++
			c.log.Warn("unrecognized entity type, leaving unchanged",
				zap.String("type", string(e.Type)),
				zap.String("text", e.Text))
			keep(span)
			continue
		case policy == PolicyBenign:
			keep(span)
			continue
		case stats.Corrupted >= limit:
			keep(span)
			continue
		case c.opts.Rand.Float64() >= c.opts.Rate:
			keep(span)
			continue
		}

		repl, replLabels, err := c.apply(policy, e, span, game)
		if err != nil {
			stats.Aborted++
			return Result{Stats: stats}, fmt.Errorf("corrupt %q (%s): %w", e.Text, e.Type, err)
		}

		if anyError(replLabels) {
			stats.Corrupted++
			stats.ByPolicy[policy]++
			c.log.Sugar().Infof("[%s] %s -> %s %v", e.Type, strings.Join(span, " "), strings.Join(repl, " "), replLabels)
		}

		tokens = append(tokens, repl...)
		labels = append(labels, replLabels...)
	}
	keep(s.Tokens[cursor:])

	return Result{Tokens: tokens, Labels: labels, Stats: stats}, nil
}

func (c *Corruptor) apply(policy Policy, e model.Entity, span []string, game *model.GameRecord) ([]string, []model.Label, error) {
	switch policy {
	case PolicyDay:
		day, err := ChooseDifferent(c.opts.Rand, Weekdays, canonicalDay(e.Text))
		if err != nil {
			return nil, nil, err
		}
		return []string{day}, []model.Label{model.LabelName}, nil

	case PolicyPerson:
		var players []string
		if game != nil {
			players = game.Players()
		}
		player, err := ChooseDifferent(c.opts.Rand, players, e.Text)
		if err != nil {
			return nil, nil, err
		}
		return named(player)

	case PolicyPlace:
		city, err := ChooseDifferent(c.opts.Rand, c.opts.Cities, e.Text)
		if err != nil {
			return nil, nil, err
		}
		return named(city)

	case PolicyTeam:
		other, ok := game.OtherTeam(e.Text)
		if !ok || other == e.Text {
			return nil, nil, fmt.Errorf("team %q has no opponent: %w", e.Text, ErrNoAlternative)
		}
		return named(other)

	case PolicyNumber:
		return c.numbers(span, Cardinal)

	case PolicyOrdinal:
		return c.numbers(span, Ordinal)
	}

	return append([]string(nil), span...), allO(len(span)), nil
}

// numbers corrupts a numeric span token by token. The first token is always
// attempted; later tokens pass the rate gate independently.
func (c *Corruptor) numbers(span []string, mode NumberMode) ([]string, []model.Label, error) {
	tokens := make([]string, len(span))
	labels := make([]model.Label, len(span))

	for i, tok := range span {
		tokens[i] = tok
		labels[i] = model.LabelO

		if i > 0 && c.opts.Rand.Float64() >= c.opts.Rate {
			continue
		}

		repl, ok, err := c.resampler.ModifyNumber(tok, mode)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			tokens[i] = repl
			labels[i] = model.LabelNumber
		}
	}
	return tokens, labels, nil
}

func named(repl string) ([]string, []model.Label, error) {
	toks := strings.Fields(repl)
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("empty replacement: %w", ErrNoAlternative)
	}
	labels := make([]model.Label, len(toks))
	for i := range labels {
		labels[i] = model.LabelName
	}
	return toks, labels, nil
}

func canonicalDay(text string) string {
	for _, d := range Weekdays {
		if strings.EqualFold(strings.TrimSpace(text), d) {
			return d
		}
	}
	return text
}

func allO(n int) []model.Label {
	labels := make([]model.Label, n)
	for i := range labels {
		labels[i] = model.LabelO
	}
	return labels
}

func anyError(labels []model.Label) bool {
	for _, l := range labels {
		if l != model.LabelO {
			return true
		}
	}
	return false
}

func checkSpans(s Sentence) error {
	prev := 0
	for _, e := range s.Entities {
		if e.Start < prev || e.End <= e.Start || e.End > len(s.Tokens) {
			return fmt.Errorf("entity %q spans [%d, %d) outside or overlapping sentence of %d tokens", e.Text, e.Start, e.End, len(s.Tokens))
		}
		prev = e.End
	}
	return nil
}
