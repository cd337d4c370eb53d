// Demo program showing how sentences about a game are corrupted and labelled.
// Entities come from the built-in gazetteer, so no services are needed.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ppiankov/boxcheck/internal/corrupt"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/ner"
	"github.com/ppiankov/boxcheck/internal/tokenize"
)

func main() {
	fmt.Println("=== Corruption Demo ===")
	fmt.Println()

	game := model.NewGameRecord(model.GameInfo{
		HomeName: "Celtics",
		HomeCity: "Boston",
		AwayName: "Heat",
		AwayCity: "Miami",
		Day:      "Monday",
	}, []string{"Isaiah Thomas", "Avery Bradley", "Goran Dragic", "Hassan Whiteside"}, nil)

	sentences := []string{
		"The Boston Celtics defeated the Miami Heat 112 - 104 on Monday.",
		"Isaiah Thomas led the way with 29 points and eight assists.",
		"Goran Dragic added 22 points, while Hassan Whiteside grabbed 14 rebounds.",
		"The Celtics shot 48 percent from the field in the third quarter.",
	}

	opts := corrupt.DefaultOptions()
	opts.Rate = 0.8
	opts.MaxRatio = 1
	opts.Rand = rand.New(rand.NewPCG(7, 8))

	c, err := corrupt.New(opts)
	if err != nil {
		fmt.Printf("Setup error: %v\n", err)
		return
	}
	recognizer := ner.NewGazetteer(game, opts.Cities)

	ctx := context.Background()
	total := corrupt.Stats{}

	for _, s := range sentences {
		tokens := tokenize.Words(s)
		fmt.Printf("Original:  %s\n", strings.Join(tokens, " "))
		fmt.Println(strings.Repeat("-", 60))

		ents, err := recognizer.Recognize(ctx, tokens)
		if err != nil {
			fmt.Printf("  Entity error: %v\n\n", err)
			continue
		}
		for _, e := range ents {
			fmt.Printf("  %-8s %s\n", e.Type, e.Text)
		}

		res, err := c.Corrupt(corrupt.Sentence{Tokens: tokens, Entities: ents}, game)
		if err != nil {
			fmt.Printf("  ⚠️  Skipped: %v\n\n", err)
			continue
		}
		total.Add(res.Stats)

		if !res.Changed() {
			fmt.Println("  ✓ Unchanged")
			fmt.Println()
			continue
		}
		fmt.Printf("Corrupted: %s\n", strings.Join(res.Tokens, " "))
		for i, tok := range res.Tokens {
			if res.Labels[i] != model.LabelO {
				fmt.Printf("     - %s (%s)\n", tok, res.Labels[i])
			}
		}
		fmt.Println()
	}

	fmt.Println("=== Demo Complete ===")
	fmt.Printf("\n%s\n", total)
}
