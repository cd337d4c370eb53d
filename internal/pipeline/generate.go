package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/corrupt"
	"github.com/ppiankov/boxcheck/internal/dataset"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/ner"
	"github.com/ppiankov/boxcheck/internal/retrieve"
	"github.com/ppiankov/boxcheck/internal/tokenize"
	"github.com/ppiankov/boxcheck/internal/worker"
)

// GenerateOptions controls example generation
type GenerateOptions struct {
	OutDir  string
	Variant dataset.Variant
}

// Generator turns the facts of a game range into labelled examples. It
// implements worker.ShardRunner; every shard gets its own random source
// seeded from the configured seed and the shard start, so output does not
// depend on scheduling.
type Generator struct {
	store      *gamedata.Store
	retriever  *retrieve.Retriever
	recognize  ner.Factory
	corruption corrupt.Options
	retrieval  model.RetrievalConfig
	separator  string
	seed       uint64
	opts       GenerateOptions
	log        *zap.Logger
}

// NewGenerator resolves every collaborator up front so shards can run concurrently
func (p *Pipeline) NewGenerator(store *gamedata.Store, opts GenerateOptions) (*Generator, error) {
	r, err := p.retriever()
	if err != nil {
		return nil, err
	}
	rec, err := p.recognizers()
	if err != nil {
		return nil, err
	}
	if opts.Variant == "" {
		opts.Variant = dataset.VariantPlain
	}

	// Fail on bad corruption settings before any shard starts
	if _, err := corrupt.New(p.corruptOptions()); err != nil {
		return nil, err
	}

	return &Generator{
		store:      store,
		retriever:  r,
		recognize:  rec,
		corruption: p.corruptOptions(),
		retrieval:  p.config.Retrieval,
		separator:  p.config.Data.Separator,
		seed:       p.config.Corruption.Seed,
		opts:       opts,
		log:        p.log,
	}, nil
}

// shardRand returns the random source of the shard starting at start
func shardRand(seed uint64, start int) *rand.Rand {
	s := seed + uint64(start)
	return rand.New(rand.NewPCG(s, s+1))
}

// RunShard generates the examples of one shard and writes <OutDir>/<shard>.json
func (g *Generator) RunShard(ctx context.Context, shard worker.Shard) (worker.ShardSummary, error) {
	rng := shardRand(g.seed, shard.Start)
	opts := g.corruption
	opts.Rand = rng
	opts.Logger = g.log.With(zap.String("shard", shard.Name()))
	c, err := corrupt.New(opts)
	if err != nil {
		return worker.ShardSummary{}, err
	}

	end := min(shard.End, g.store.Len())
	var (
		plain     []model.Example
		retrieval []model.RetrievalExample
		stats     corrupt.Stats
		skipped   int
	)

	for i := shard.Start; i < end; i++ {
		game, err := g.store.Game(i)
		if err != nil {
			return worker.ShardSummary{}, err
		}

		examples, gameStats, n, err := g.game(ctx, c, rng, game)
		if err != nil {
			return worker.ShardSummary{}, fmt.Errorf("game %d: %w", i, err)
		}
		stats.Add(gameStats)
		skipped += n

		for _, ex := range examples {
			if g.opts.Variant == dataset.VariantRetrieval {
				retrieval = append(retrieval, ex)
			} else {
				plain = append(plain, ex.Flatten(g.separator))
			}
		}
	}

	path := filepath.Join(g.opts.OutDir, shard.Name()+".json")
	count := len(plain)
	if g.opts.Variant == dataset.VariantRetrieval {
		count = len(retrieval)
		err = dataset.WriteFile(path, retrieval)
	} else {
		err = dataset.WriteFile(path, plain)
	}
	if err != nil {
		return worker.ShardSummary{}, err
	}

	g.log.Debug("shard generated",
		zap.String("shard", shard.Name()),
		zap.Int("examples", count),
		zap.Int("skipped", skipped),
		zap.Stringer("stats", stats))
	return worker.ShardSummary{Path: path, Examples: count, Skipped: skipped}, nil
}

// game builds the examples of one game. Sentences whose corruption has no
// valid alternative are skipped and counted.
func (g *Generator) game(ctx context.Context, c *corrupt.Corruptor, rng *rand.Rand, game *model.GameRecord) ([]model.RetrievalExample, corrupt.Stats, int, error) {
	var (
		examples []model.RetrievalExample
		stats    corrupt.Stats
		skipped  int
	)

	facts := game.Facts()
	recognizer := g.recognize(game)

	for _, hyp := range sampleFacts(rng, facts, g.retrieval.Hypotheses) {
		if err := ctx.Err(); err != nil {
			return nil, stats, skipped, err
		}

		scored, err := g.retriever.Retrieve(ctx, hyp.Text, facts, g.retrieval.ContextCount, retrieve.Options{Exclude: true})
		if err != nil {
			return nil, stats, skipped, fmt.Errorf("retrieve context: %w", err)
		}

		tokens := tokenize.Words(hyp.Text)
		ents, err := recognizer.Recognize(ctx, tokens)
		if err != nil {
			return nil, stats, skipped, fmt.Errorf("recognize entities: %w", err)
		}

		res, err := c.Corrupt(corrupt.Sentence{Tokens: tokens, Entities: ents}, game)
		stats.Add(res.Stats)
		if errors.Is(err, corrupt.ErrNoAlternative) || errors.Is(err, corrupt.ErrUnsatisfiable) {
			g.log.Debug("sentence skipped", zap.String("sentence", hyp.Text), zap.Error(err))
			skipped++
			continue
		}
		if err != nil {
			return nil, stats, skipped, err
		}

		ex := model.RetrievalExample{
			Ctx:    tokenize.Words(retrieve.ContextText(scored)),
			Sent:   res.Tokens,
			Labels: res.Labels,
		}
		if err := ex.Validate(g.corruption.Labels); err != nil {
			return nil, stats, skipped, err
		}
		examples = append(examples, ex)
	}
	return examples, stats, skipped, nil
}

// sampleFacts draws n facts without replacement; n <= 0 takes them all in order
func sampleFacts(rng *rand.Rand, facts []model.FactStatement, n int) []model.FactStatement {
	if n <= 0 {
		return facts
	}
	n = min(n, len(facts))
	perm := rng.Perm(len(facts))[:n]
	out := make([]model.FactStatement, n)
	for i, j := range perm {
		out[i] = facts[j]
	}
	return out
}

// Generate splits [start, end) into shards and runs them on a worker pool.
// Shard failures are returned joined after every shard has finished.
func (g *Generator) Generate(ctx context.Context, split string, start, end, shardSize, workers int) ([]*worker.ShardResult, error) {
	if end < 0 || end > g.store.Len() {
		end = g.store.Len()
	}
	if start < 0 || start > end {
		return nil, fmt.Errorf("invalid game range [%d, %d) for %d games", start, end, g.store.Len())
	}

	shards := worker.Split(split, start, end, shardSize)
	results := worker.NewBatchProcessor(g, workers, g.log).Process(ctx, shards)

	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("shard %s: %w", r.Shard.Name(), r.Error))
		}
	}
	return results, errors.Join(errs...)
}
