package annotate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/boxcheck/internal/model"
)

// DocID strips the file extension submission rows carry on TEXT_ID
func DocID(textID string) string {
	return strings.TrimSuffix(textID, ".txt")
}

// ReplayStats counts what happened to the annotations of one text
type ReplayStats struct {
	Applied   int
	Dropped   int // Sentence or position did not exist
	Unmatched int // Type not in the label set
}

func (s ReplayStats) String() string {
	return fmt.Sprintf("applied=%d dropped=%d unmatched=%d", s.Applied, s.Dropped, s.Unmatched)
}

// Replay labels the tokens of one text's sentences from gold annotations.
// annos must be ordered by text, sentence and position. Annotations are
// consumed from the front while they belong to the current sentence; the
// first one that does not stops consumption for that sentence. Leftover
// annotations of textID are dropped and the remainder is returned.
func Replay(textID string, sentences [][]string, annos []model.Annotation, labels model.LabelSet) ([][]model.Label, []model.Annotation, ReplayStats) {
	var stats ReplayStats
	doc := DocID(textID)
	out := make([][]model.Label, len(sentences))

	for i, sent := range sentences {
		sid := i + 1
		ls := make([]model.Label, len(sent))
		for j := range ls {
			ls[j] = model.LabelO
		}

		for len(annos) > 0 && DocID(annos[0].TextID) == doc && annos[0].SentenceID == sid {
			a := annos[0]
			annos = annos[1:]

			if !labels.Contains(a.Type) {
				stats.Unmatched++
				continue
			}
			if a.SentStart < 1 || a.SentEnd > len(sent) || a.SentEnd < a.SentStart {
				stats.Dropped++
				continue
			}
			for p := a.SentStart; p <= a.SentEnd; p++ {
				ls[p-1] = a.Type
			}
			stats.Applied++
		}
		out[i] = ls
	}

	for len(annos) > 0 && DocID(annos[0].TextID) == doc {
		stats.Dropped++
		annos = annos[1:]
	}
	return out, annos, stats
}
