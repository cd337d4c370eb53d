// Package annotate handles error annotations in the shared-task submission
// format: merging contiguous spans, reading and writing the CSV, and replaying
// gold annotations onto tokenized sentences.
package annotate

import (
	"strings"

	"github.com/ppiankov/boxcheck/internal/model"
)

// Follows reports whether next continues prev: same text, sentence and type,
// and contiguous in both sentence and document token positions.
func Follows(prev, next model.Annotation) bool {
	if prev.TextID != next.TextID || prev.SentenceID != next.SentenceID {
		return false
	}
	return prev.SentEnd+1 == next.SentStart &&
		prev.DocEnd+1 == next.DocStart &&
		prev.Type == next.Type
}

// Merge collapses maximal runs of contiguous annotations into one annotation
// each. Input order is kept and nothing is re-sorted, so callers pass rows
// already ordered by text, sentence and position.
func Merge(annos []model.Annotation) []model.Annotation {
	if len(annos) == 0 {
		return nil
	}

	out := make([]model.Annotation, 0, len(annos))
	run := []model.Annotation{annos[0]}
	for _, a := range annos[1:] {
		if Follows(run[len(run)-1], a) {
			run = append(run, a)
			continue
		}
		out = append(out, collapse(run))
		run = []model.Annotation{a}
	}
	return append(out, collapse(run))
}

func collapse(run []model.Annotation) model.Annotation {
	merged := run[0]
	if len(run) == 1 {
		return merged
	}

	toks := make([]string, len(run))
	for i, a := range run {
		toks[i] = a.Tokens
	}
	last := run[len(run)-1]

	merged.Tokens = strings.Join(toks, " ")
	merged.SentEnd = last.SentEnd
	merged.DocEnd = last.DocEnd
	return merged
}
