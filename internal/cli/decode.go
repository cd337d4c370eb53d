package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/boxcheck/internal/annotate"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/pipeline"
)

var (
	decodeSplit   string
	decodeInput   string
	decodeOut     string
	decodeTimeout time.Duration
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Predict error spans for generated texts and write a submission CSV",
	Long: `Decode runs the trained token classifier over generated game summaries:
- Split every text into sentences and whitespace tokens
- Retrieve the most similar game facts as context for each sentence
- Tokenize context and sentence, predict a label per subword
- Keep the label of the first subword of each sentence word
- Merge adjacent error tokens into spans and write the submission CSV

The input file is the games CSV with TEXT_ID, GAME_ID and TEXT columns.

Example:
  boxcheck decode --split test --input data/games.csv --out out.csv
  boxcheck decode --input data/games.csv --out out.csv --timeout 30m`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(&decodeSplit, "split", "test", "data split the games belong to")
	decodeCmd.Flags().StringVar(&decodeInput, "input", "games.csv", "games CSV with the texts to check")
	decodeCmd.Flags().StringVar(&decodeOut, "out", "out.csv", "output submission CSV")
	decodeCmd.Flags().DurationVar(&decodeTimeout, "timeout", 0, "overall timeout (0 = none)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(decodeTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Decoding: %s\n", decodeInput)
		fmt.Fprintf(os.Stderr, "Split: %s\n", decodeSplit)
		fmt.Fprintf(os.Stderr, "Predictor: %s\n", cfg.Predictor.Endpoint)
		fmt.Fprintln(os.Stderr)
	}

	texts, err := gamedata.ReadGamesFile(decodeInput)
	if err != nil {
		return err
	}
	store, err := gamedata.Load(cfg.Data, decodeSplit, logger)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, pipeline.Collaborators{}, logger)
	if err != nil {
		return err
	}

	res, err := p.Decode(ctx, store, texts)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	if err := annotate.WriteFile(decodeOut, res.Annotations); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Submission written: %s\n", decodeOut)
	fmt.Fprintf(os.Stderr, "  Texts: %d, sentences: %d\n", res.Texts, res.Sentences)
	fmt.Fprintf(os.Stderr, "  Error tokens: %d, spans after merging: %d\n", res.Raw, len(res.Annotations))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "  ⚠ %d texts belong to skipped games and have no annotations\n", len(res.Skipped))
	}
	return nil
}
