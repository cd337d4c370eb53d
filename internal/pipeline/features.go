package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/align"
	"github.com/ppiankov/boxcheck/internal/model"
)

// FeatureRow is one training row: subword ids and one label id per position,
// model.IgnoreID where the position is not scored
type FeatureRow struct {
	InputIDs []int `json:"input_ids"`
	Labels   []int `json:"labels"`
}

// Features tokenizes examples and aligns their word labels to subwords,
// writing one JSON row per example. It returns the number of rows written.
func (p *Pipeline) Features(ctx context.Context, examples []model.Example, w io.Writer) (int, error) {
	tok, err := p.tokenizer()
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for i, ex := range examples {
		if err := ex.Validate(p.labels); err != nil {
			return i, fmt.Errorf("example %d: %w", i, err)
		}

		encoding, err := tok.Encode(ctx, ex.Text)
		if err != nil {
			return i, fmt.Errorf("example %d: encode: %w", i, err)
		}

		labels, err := align.Align(encoding, ex.Labels, p.labels)
		if err != nil {
			return i, fmt.Errorf("example %d: align: %w", i, err)
		}

		if err := enc.Encode(FeatureRow{InputIDs: encoding.InputIDs, Labels: labels}); err != nil {
			return i, fmt.Errorf("example %d: write: %w", i, err)
		}

		if (i+1)%1000 == 0 {
			p.log.Info("features progress", zap.Int("examples", i+1))
		}
	}

	if err := bw.Flush(); err != nil {
		return len(examples), fmt.Errorf("flush features: %w", err)
	}
	return len(examples), nil
}
