package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/boxcheck/internal/annotate"
	"github.com/ppiankov/boxcheck/internal/dataset"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/pipeline"
	"github.com/ppiankov/boxcheck/internal/render"
)

var (
	goldSplit   string
	goldGames   string
	goldAnnos   string
	goldOut     string
	goldVariant string

	renderTexts string
	renderGold  string
	renderPred  string
	renderGames string
	renderOut   string
)

var goldCmd = &cobra.Command{
	Use:   "gold",
	Short: "Build a labelled dataset from human error annotations",
	Long: `Gold replays a human-annotated error CSV over the generated texts it
refers to and writes one labelled example per sentence, with retrieved
context. The result has the same format as 'boxcheck generate' output and
can be used for evaluation or fine-tuning.

Example:
  boxcheck gold --games data/games.csv --annotations data/gold.csv --out data/gold.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(0)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		variant, err := dataset.ParseVariant(goldVariant)
		if err != nil {
			return err
		}

		texts, err := gamedata.ReadGamesFile(goldGames)
		if err != nil {
			return err
		}
		annos, err := annotate.ReadFile(goldAnnos)
		if err != nil {
			return err
		}
		store, err := gamedata.Load(cfg.Data, goldSplit, logger)
		if err != nil {
			return fmt.Errorf("load games: %w", err)
		}

		p, err := pipeline.NewPipeline(cfg, pipeline.Collaborators{}, logger)
		if err != nil {
			return err
		}
		examples, stats, err := p.Gold(ctx, store, texts, annos)
		if err != nil {
			return err
		}

		if variant == dataset.VariantPlain {
			flat := make([]model.Example, len(examples))
			for i, ex := range examples {
				flat[i] = ex.Flatten(cfg.Data.Separator)
			}
			err = dataset.WriteFile(goldOut, flat)
		} else {
			err = dataset.WriteFile(goldOut, examples)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "✓ Wrote %d examples: %s\n", len(examples), goldOut)
		fmt.Fprintf(os.Stderr, "  Annotations: %s\n", stats)
		return nil
	},
}

var postprocessCmd = &cobra.Command{
	Use:   "postprocess <submission.csv>",
	Short: "Merge adjacent error tokens of a submission CSV in place",
	Long: `Postprocess rewrites a submission CSV so that runs of contiguous error
tokens of the same type in the same sentence become one span. Running it
twice changes nothing.

Example:
  boxcheck postprocess out.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, after, err := annotate.PostprocessFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %d annotations merged into %d\n", args[0], before, after)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render gold and predicted annotations as an HTML page",
	Long: `Render writes an HTML page showing every text with its gold and predicted
error tokens highlighted: correct, incorrect type, missed and extra.

Example:
  boxcheck render --texts data/texts --gold gold.csv --pred out.csv --out review.html`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		texts, err := render.LoadTexts(renderTexts)
		if err != nil {
			return err
		}

		var gold, pred []model.Annotation
		if renderGold != "" {
			if gold, err = annotate.ReadFile(renderGold); err != nil {
				return err
			}
		}
		if renderPred != "" {
			if pred, err = annotate.ReadFile(renderPred); err != nil {
				return err
			}
		}
		var games []gamedata.GameText
		if renderGames != "" {
			if games, err = gamedata.ReadGamesFile(renderGames); err != nil {
				return err
			}
		}

		docs := render.Documents(texts, gold, pred, games)

		out := os.Stdout
		if renderOut != "" {
			var f *os.File
			f, err = os.Create(renderOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("close output: %w", closeErr)
				}
			}()
			out = f
		}

		if err := render.Write(out, docs); err != nil {
			return err
		}
		if renderOut != "" {
			fmt.Fprintf(os.Stderr, "✓ Rendered %d texts: %s\n", len(docs), renderOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(goldCmd)
	rootCmd.AddCommand(postprocessCmd)
	rootCmd.AddCommand(renderCmd)

	goldCmd.Flags().StringVar(&goldSplit, "split", "test", "data split the games belong to")
	goldCmd.Flags().StringVar(&goldGames, "games", "games.csv", "games CSV with the annotated texts")
	goldCmd.Flags().StringVar(&goldAnnos, "annotations", "", "gold error annotations CSV")
	goldCmd.Flags().StringVar(&goldOut, "out", "gold.json", "output dataset file")
	goldCmd.Flags().StringVar(&goldVariant, "variant", "retrieval", "dataset variant (plain, retrieval)")
	_ = goldCmd.MarkFlagRequired("annotations")

	renderCmd.Flags().StringVar(&renderTexts, "texts", "", "directory of <text_id>.txt files")
	renderCmd.Flags().StringVar(&renderGold, "gold", "", "gold annotations CSV")
	renderCmd.Flags().StringVar(&renderPred, "pred", "", "predicted annotations CSV")
	renderCmd.Flags().StringVar(&renderGames, "games", "", "games CSV for titles and box score links")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output HTML file (default: stdout)")
	_ = renderCmd.MarkFlagRequired("texts")
}
