package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/boxcheck/internal/dataset"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/pipeline"
)

var (
	genSplit     string
	genStart     int
	genEnd       int
	genOutDir    string
	genVariant   string
	batchTimeout time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate labelled examples from game facts",
	Long: `Generate builds training examples for one split:
- Sample fact sentences of every game as hypotheses
- Retrieve the most similar facts of the same game as context
- Corrupt names and numbers in the hypothesis and label them
- Write one dataset file per shard of games, in parallel

Shards are named <split>-<start>-<end>.json and seeded from the configured
seed and the shard start, so output does not depend on the worker count.
Use 'boxcheck merge' to join them.

Example:
  boxcheck generate --split train --out-dir data/generated
  boxcheck generate --split test --start 0 --end 200 --shard-size 50 --workers 8
  boxcheck generate --split dev --variant retrieval`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genSplit, "split", "train", "data split (train, dev, test)")
	generateCmd.Flags().IntVar(&genStart, "start", 0, "first game index")
	generateCmd.Flags().IntVar(&genEnd, "end", -1, "game index to stop before (-1 = all games)")
	generateCmd.Flags().StringVar(&genOutDir, "out-dir", "data/generated", "output directory for shard files")
	generateCmd.Flags().StringVar(&genVariant, "variant", "plain", "dataset variant (plain, retrieval)")
	generateCmd.Flags().DurationVar(&batchTimeout, "timeout", 0, "total timeout (0 = none)")

	generateCmd.Flags().Int("shard-size", 100, "games per shard")
	generateCmd.Flags().Int("workers", 4, "number of concurrent shards")
	generateCmd.Flags().Float64("rate", 0.5, "probability that an entity is corrupted")
	generateCmd.Flags().Uint64("seed", 42, "random seed")
	_ = viper.BindPFlag("concurrency.shard_size", generateCmd.Flags().Lookup("shard-size"))
	_ = viper.BindPFlag("concurrency.workers", generateCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("corruption.rate", generateCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("corruption.seed", generateCmd.Flags().Lookup("seed"))
}

// commandContext is cancelled on interrupt and, when timeout > 0, after timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	variant, err := dataset.ParseVariant(genVariant)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  boxcheck generate\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Split:        %s\n", genSplit)
	fmt.Fprintf(os.Stderr, "  Variant:      %s\n", variant)
	fmt.Fprintf(os.Stderr, "  Shard size:   %d\n", cfg.Concurrency.ShardSize)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Rate:         %v (max ratio %v)\n", cfg.Corruption.Rate, cfg.Corruption.MaxRatio)
	fmt.Fprintf(os.Stderr, "  Seed:         %d\n", cfg.Corruption.Seed)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", genOutDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(genOutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	store, err := gamedata.Load(cfg.Data, genSplit, logger)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, pipeline.Collaborators{}, logger)
	if err != nil {
		return err
	}
	g, err := p.NewGenerator(store, pipeline.GenerateOptions{OutDir: genOutDir, Variant: variant})
	if err != nil {
		return err
	}

	results, runErr := g.Generate(ctx, genSplit, genStart, genEnd, cfg.Concurrency.ShardSize, cfg.Concurrency.Workers)

	examples, skipped, failures := 0, 0, 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Shard.Name(), r.Error)
			continue
		}
		examples += r.Summary.Examples
		skipped += r.Summary.Skipped
		fmt.Fprintf(os.Stderr, "✓ %s (%d examples)\n", r.Summary.Path, r.Summary.Examples)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Shards:     %d (%d failed)\n", len(results), failures)
	fmt.Fprintf(os.Stderr, "  Examples:   %d\n", examples)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d sentences\n", skipped)
	fmt.Fprintf(os.Stderr, "\n")

	return runErr
}
