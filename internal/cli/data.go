package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/boxcheck/internal/dataset"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/pipeline"
)

var (
	mergeDir     string
	mergeOutDir  string
	mergePrefix  string
	mergeVariant string
	mergeWorkers int

	featDataset string
	featVariant string
	featOut     string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge generated shard files into one dataset",
	Long: `Merge concatenates <dir>/<prefix>-*.json into <out-dir>/<prefix>.json,
ordered by shard start index.

Example:
  boxcheck merge --dir data/generated --prefix train
  boxcheck merge --dir data/generated --prefix test --out-dir data/final --variant retrieval`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(0)
		defer cancel()

		variant, err := dataset.ParseVariant(mergeVariant)
		if err != nil {
			return err
		}
		opts := dataset.MergeOptions{
			Dir:         mergeDir,
			OutDir:      mergeOutDir,
			Prefix:      mergePrefix,
			Concurrency: mergeWorkers,
			Logger:      logger,
		}

		var (
			out string
			n   int
		)
		if variant == dataset.VariantRetrieval {
			out, n, err = dataset.MergeShards[model.RetrievalExample](ctx, opts)
		} else {
			out, n, err = dataset.MergeShards[model.Example](ctx, opts)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "✓ Wrote %d examples: %s\n", n, out)
		return nil
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Tokenize a dataset into subword features with aligned labels",
	Long: `Features sends every example through the subword tokenizer service and
aligns its word labels to subword positions. Only the first subword of each
hypothesis word is labelled; everything else gets -100.

Output is JSON lines of {"input_ids": [...], "labels": [...]}.

Example:
  boxcheck features --dataset data/generated/train.json --out data/train.features.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, cancel := commandContext(0)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		examples, err := readExamples(featDataset, featVariant, cfg.Data.Separator)
		if err != nil {
			return err
		}

		p, err := pipeline.NewPipeline(cfg, pipeline.Collaborators{}, logger)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(featOut), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(featOut)
		if err != nil {
			return fmt.Errorf("create features file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close features file: %w", closeErr)
			}
		}()

		n, err := p.Features(ctx, examples, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d feature rows: %s\n", n, featOut)
		return nil
	},
}

// readExamples loads a dataset of either variant as flat examples
func readExamples(path, variant, sep string) ([]model.Example, error) {
	v, err := dataset.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	if v == dataset.VariantPlain {
		return dataset.ReadFile[model.Example](path)
	}

	data, err := dataset.ReadFile[model.RetrievalExample](path)
	if err != nil {
		return nil, err
	}
	examples := make([]model.Example, len(data))
	for i, ex := range data {
		examples[i] = ex.Flatten(sep)
	}
	return examples, nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(featuresCmd)

	mergeCmd.Flags().StringVar(&mergeDir, "dir", "data/generated", "directory with shard files")
	mergeCmd.Flags().StringVar(&mergeOutDir, "out-dir", "", "output directory (default: --dir)")
	mergeCmd.Flags().StringVar(&mergePrefix, "prefix", "", "shard prefix to merge, usually the split")
	mergeCmd.Flags().StringVar(&mergeVariant, "variant", "plain", "dataset variant (plain, retrieval)")
	mergeCmd.Flags().IntVar(&mergeWorkers, "workers", 4, "shards read concurrently")
	_ = mergeCmd.MarkFlagRequired("prefix")

	featuresCmd.Flags().StringVar(&featDataset, "dataset", "", "dataset file")
	featuresCmd.Flags().StringVar(&featVariant, "variant", "plain", "dataset variant (plain, retrieval)")
	featuresCmd.Flags().StringVar(&featOut, "out", "features.jsonl", "output JSONL file")
	_ = featuresCmd.MarkFlagRequired("dataset")
}
