package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/boxcheck/internal/annotate"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
	"github.com/ppiankov/boxcheck/internal/retrieve"
	"github.com/ppiankov/boxcheck/internal/tokenize"
)

// Gold turns human error annotations of generated texts into labelled
// examples with retrieved context, one per sentence.
func (p *Pipeline) Gold(ctx context.Context, store *gamedata.Store, texts []gamedata.GameText, annos []model.Annotation) ([]model.RetrievalExample, annotate.ReplayStats, error) {
	var total annotate.ReplayStats

	r, err := p.retriever()
	if err != nil {
		return nil, total, err
	}

	byDoc := make(map[string][]model.Annotation)
	for _, a := range annos {
		id := annotate.DocID(a.TextID)
		byDoc[id] = append(byDoc[id], a)
	}

	var examples []model.RetrievalExample
	for _, text := range texts {
		idx, ok := store.Resolve(text.GameIndex)
		if !ok {
			p.log.Warn("game was skipped at load time", zap.String("text_id", text.TextID))
			continue
		}
		game, err := store.Game(idx)
		if err != nil {
			return nil, total, fmt.Errorf("%s: %w", text.TextID, err)
		}

		sentences := tokenize.Sentences(text.Text)
		hyps := make([][]string, len(sentences))
		for i, s := range sentences {
			hyps[i] = tokenize.Fields(s)
		}

		labels, _, stats := annotate.Replay(text.TextID, hyps, byDoc[annotate.DocID(text.TextID)], p.labels)
		total.Applied += stats.Applied
		total.Dropped += stats.Dropped
		total.Unmatched += stats.Unmatched
		if stats.Dropped > 0 || stats.Unmatched > 0 {
			p.log.Debug("annotations not replayed", zap.String("text_id", text.TextID), zap.Stringer("stats", stats))
		}

		for i, sentence := range sentences {
			scored, err := r.Retrieve(ctx, sentence, game.Facts(), p.config.Retrieval.ContextCount, retrieve.Options{})
			if err != nil {
				return nil, total, fmt.Errorf("%s sentence %d: retrieve context: %w", text.TextID, i+1, err)
			}
			examples = append(examples, model.RetrievalExample{
				Ctx:    tokenize.Words(retrieve.ContextText(scored)),
				Sent:   hyps[i],
				Labels: labels[i],
			})
		}
	}
	return examples, total, nil
}
