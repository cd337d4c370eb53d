// Package align maps word-level error labels onto subword positions.
//
// Only the hypothesis is scored: every position up to and including the
// first separator is ignored, as are special tokens and continuation
// subwords. The first subword of each hypothesis word carries the word's label.
package align

import (
	"fmt"

	"github.com/ppiankov/boxcheck/internal/model"
)

// NoWord marks a subword position that belongs to no input word
// (special tokens, padding)
const NoWord = -1

// Encoding is a subword tokenization of a word sequence
type Encoding struct {
	InputIDs []int `json:"input_ids"`
	WordIDs  []int `json:"word_ids"` // Source word per position, NoWord if none
	SepID    int   `json:"sep_id"`
}

// Validate checks that the position arrays are parallel
func (e Encoding) Validate() error {
	if len(e.InputIDs) != len(e.WordIDs) {
		return fmt.Errorf("encoding has %d input ids but %d word ids", len(e.InputIDs), len(e.WordIDs))
	}
	return nil
}

// Align returns one label id per subword position, model.IgnoreID where the
// position does not take part in the loss
func Align(enc Encoding, wordLabels []model.Label, labels model.LabelSet) ([]int, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}

	aligned := make([]int, len(enc.InputIDs))
	active := false

	for i, id := range enc.InputIDs {
		aligned[i] = model.IgnoreID
		word := enc.WordIDs[i]

		if active && word != NoWord && (i == 0 || enc.WordIDs[i-1] != word) {
			if word < 0 || word >= len(wordLabels) {
				return nil, fmt.Errorf("position %d: word %d outside %d labels", i, word, len(wordLabels))
			}
			labelID, err := labels.ID(wordLabels[word])
			if err != nil {
				return nil, fmt.Errorf("position %d: %w", i, err)
			}
			aligned[i] = labelID
		}

		if id == enc.SepID {
			active = true
		}
	}

	return aligned, nil
}

// HypothesisWords returns, for each of the hypLen words after the separator,
// the position of its first subword. Words cut off by truncation get -1.
func HypothesisWords(enc Encoding, hypLen int) ([]int, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}

	positions := make([]int, hypLen)
	for i := range positions {
		positions[i] = -1
	}

	sep := -1
	for i, id := range enc.InputIDs {
		if id == enc.SepID {
			sep = i
			break
		}
	}
	if sep < 0 {
		return positions, nil
	}

	first := NoWord
	if w := enc.WordIDs[sep]; w != NoWord {
		first = w + 1
	}

	for i := sep + 1; i < len(enc.InputIDs); i++ {
		word := enc.WordIDs[i]
		if word == NoWord || enc.WordIDs[i-1] == word {
			continue
		}
		if first == NoWord {
			first = word
		}
		j := word - first
		if j >= 0 && j < hypLen && positions[j] == -1 {
			positions[j] = i
		}
	}

	return positions, nil
}

// ToLabels converts label ids back to labels, skipping ignored positions
func ToLabels(ids []int, labels model.LabelSet) ([]model.Label, error) {
	out := make([]model.Label, 0, len(ids))
	for _, id := range ids {
		if id == model.IgnoreID {
			continue
		}
		l, err := labels.Label(id)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
