package worker

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Shard is a half-open range of game indices processed as one unit
type Shard struct {
	Split string
	Start int
	End   int
}

// Name returns the shard's file stem, <split>-<start>-<end>
func (s Shard) Name() string {
	return fmt.Sprintf("%s-%d-%d", s.Split, s.Start, s.End)
}

// Split partitions [start, end) into shards of at most size games
func Split(split string, start, end, size int) []Shard {
	if size <= 0 {
		size = end - start
	}
	var shards []Shard
	for lo := start; lo < end; lo += size {
		hi := lo + size
		if hi > end {
			hi = end
		}
		shards = append(shards, Shard{Split: split, Start: lo, End: hi})
	}
	return shards
}

// ShardRunner processes one shard, writing its own output
type ShardRunner interface {
	RunShard(ctx context.Context, shard Shard) (ShardSummary, error)
}

// ShardSummary is what a runner reports back for logging
type ShardSummary struct {
	Path     string
	Examples int
	Skipped  int
}

// ShardJob runs one shard
type ShardJob struct {
	Shard  Shard
	Runner ShardRunner
}

// Execute implements Job
func (j *ShardJob) Execute(ctx context.Context) Result {
	summary, err := j.Runner.RunShard(ctx, j.Shard)
	return &ShardResult{Shard: j.Shard, Summary: summary, Error: err}
}

// ShardResult is the outcome of one shard
type ShardResult struct {
	Shard   Shard
	Summary ShardSummary
	Error   error
}

// GetError returns the error from the shard result
func (r *ShardResult) GetError() error {
	return r.Error
}

// BatchProcessor runs shards concurrently
type BatchProcessor struct {
	runner      ShardRunner
	concurrency int
	log         *zap.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner ShardRunner, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		log:         logger,
	}
}

// Process runs every shard and returns the results ordered by shard start.
// A failing shard does not stop the others.
func (b *BatchProcessor) Process(ctx context.Context, shards []Shard) []*ShardResult {
	if len(shards) == 0 {
		return []*ShardResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for _, s := range shards {
			if !pool.Submit(&ShardJob{Shard: s, Runner: b.runner}) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*ShardResult, 0, len(shards))
	for r := range pool.Results() {
		res := r.(*ShardResult)
		if res.Error != nil {
			b.log.Error("shard failed", zap.String("shard", res.Shard.Name()), zap.Error(res.Error))
		} else {
			b.log.Info("shard done",
				zap.String("shard", res.Shard.Name()),
				zap.String("path", res.Summary.Path),
				zap.Int("examples", res.Summary.Examples),
				zap.Int("skipped", res.Summary.Skipped))
		}
		results = append(results, res)
	}

	// Shards never run because ctx ended still get a result
	if len(results) < len(shards) {
		reported := make(map[Shard]bool, len(results))
		for _, r := range results {
			reported[r.Shard] = true
		}
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		for _, s := range shards {
			if reported[s] {
				continue
			}
			err := fmt.Errorf("shard %s not run: %w", s.Name(), cause)
			b.log.Error("shard failed", zap.String("shard", s.Name()), zap.Error(err))
			results = append(results, &ShardResult{Shard: s, Error: err})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Shard.Start < results[j].Shard.Start
	})
	return results
}
