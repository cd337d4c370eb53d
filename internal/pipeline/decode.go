package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/align"
	"github.com/ppiankov/boxcheck/internal/annotate"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/predict"
	"github.com/ppiankov/boxcheck/internal/retrieve"
	"github.com/ppiankov/boxcheck/internal/tokenize"
)

// DecodeResult is the outcome of decoding a games file
type DecodeResult struct {
	Annotations []model.Annotation // Merged, in document order
	Raw         int                // Single-token annotations before merging
	Texts       int
	Sentences   int
	Skipped     []string // Text ids whose game was dropped at load time
}

// Decode predicts error spans for every generated text and returns them as
// submission annotations. Hypothesis tokens are the whitespace tokens of each
// sentence, so document positions count the text's whitespace tokens.
func (p *Pipeline) Decode(ctx context.Context, store *gamedata.Store, texts []gamedata.GameText) (DecodeResult, error) {
	var res DecodeResult

	r, err := p.retriever()
	if err != nil {
		return res, err
	}
	tok, err := p.tokenizer()
	if err != nil {
		return res, err
	}
	pred, err := p.predictor()
	if err != nil {
		return res, err
	}

	var annos []model.Annotation
	errorID := 0

	for _, text := range texts {
		idx, ok := store.Resolve(text.GameIndex)
		if !ok {
			p.log.Warn("game was skipped at load time, no annotations",
				zap.String("text_id", text.TextID),
				zap.Int("game", text.GameIndex))
			res.Skipped = append(res.Skipped, text.TextID)
			continue
		}
		game, err := store.Game(idx)
		if err != nil {
			return res, fmt.Errorf("%s: %w", text.TextID, err)
		}

		p.log.Info("Processing text", zap.String("text_id", text.TextID), zap.Int("game", idx))
		res.Texts++

		docToken := 0
		for s, sentence := range tokenize.Sentences(text.Text) {
			hyp := tokenize.Fields(sentence)
			res.Sentences++

			tags, err := p.tagSentence(ctx, r, tok, pred, game, sentence, hyp)
			if err != nil {
				return res, fmt.Errorf("%s sentence %d: %w", text.TextID, s+1, err)
			}

			for j, word := range hyp {
				docToken++
				if tags[j] == model.LabelO {
					continue
				}
				errorID++
				p.log.Debug("error predicted", zap.String("type", string(tags[j])), zap.String("token", word))
				annos = append(annos, model.Annotation{
					TextID:       annotate.DocID(text.TextID) + ".txt",
					SentenceID:   s + 1,
					AnnotationID: errorID,
					Tokens:       word,
					SentStart:    j + 1,
					SentEnd:      j + 1,
					DocStart:     docToken,
					DocEnd:       docToken,
					Type:         tags[j],
				})
			}
		}
	}

	res.Raw = len(annos)
	res.Annotations = annotate.Merge(annos)
	return res, nil
}

// tagSentence returns one label per hypothesis word. Words cut off by
// truncation are labelled O.
func (p *Pipeline) tagSentence(ctx context.Context, r *retrieve.Retriever, tok tokenize.Tokenizer, pred predict.Predictor, game *model.GameRecord, sentence string, hyp []string) ([]model.Label, error) {
	scored, err := r.Retrieve(ctx, sentence, game.Facts(), p.config.Retrieval.ContextCount, retrieve.Options{})
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	words := tokenize.Words(retrieve.ContextText(scored))
	words = append(words, p.config.Data.Separator)
	words = append(words, hyp...)

	enc, err := tok.Encode(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	scores, err := pred.Predict(ctx, enc.InputIDs)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(scores) != len(enc.InputIDs) {
		return nil, fmt.Errorf("predict: got %d score rows for %d input ids", len(scores), len(enc.InputIDs))
	}
	ids := predict.Argmax(scores)

	positions, err := align.HypothesisWords(enc, len(hyp))
	if err != nil {
		return nil, err
	}

	tags := make([]model.Label, len(hyp))
	for j, pos := range positions {
		tags[j] = model.LabelO
		if pos < 0 {
			continue
		}
		l, err := p.labels.Label(ids[pos])
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", j+1, err)
		}
		tags[j] = l
	}
	return tags, nil
}
