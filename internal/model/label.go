package model

import (
	"fmt"
	"strings"
)

// Label is a token-level error tag
type Label string

const (
	LabelO            Label = "O" // Correct, no error
	LabelNumber       Label = "NUMBER"
	LabelName         Label = "NAME"
	LabelWord         Label = "WORD"
	LabelNotCheckable Label = "NOT_CHECKABLE"
	LabelContext      Label = "CONTEXT"
	LabelOther        Label = "OTHER"
)

// IgnoreID marks subword positions excluded from loss and scoring.
// It is never the id of a Label.
const IgnoreID = -100

// LabelSet is a closed, ordered set of labels. A label's id is its position.
type LabelSet struct {
	name   string
	labels []Label
	ids    map[Label]int
}

// NewLabelSet creates a label set. O must be the first label.
func NewLabelSet(name string, labels ...Label) (LabelSet, error) {
	if len(labels) == 0 || labels[0] != LabelO {
		return LabelSet{}, fmt.Errorf("label set %q must start with %s", name, LabelO)
	}

	ids := make(map[Label]int, len(labels))
	for i, l := range labels {
		if _, dup := ids[l]; dup {
			return LabelSet{}, fmt.Errorf("label set %q: duplicate label %s", name, l)
		}
		ids[l] = i
	}

	return LabelSet{
		name:   name,
		labels: append([]Label(nil), labels...),
		ids:    ids,
	}, nil
}

// BasicLabels is the three-label task definition
func BasicLabels() LabelSet {
	ls, _ := NewLabelSet("basic", LabelO, LabelNumber, LabelName)
	return ls
}

// ExtendedLabels is the shared-task label definition
func ExtendedLabels() LabelSet {
	ls, _ := NewLabelSet("extended", LabelO, LabelNumber, LabelName, LabelWord, LabelNotCheckable, LabelContext, LabelOther)
	return ls
}

// LabelSetByName resolves a configured label set name
func LabelSetByName(name string) (LabelSet, error) {
	switch strings.ToLower(name) {
	case "", "basic":
		return BasicLabels(), nil
	case "extended":
		return ExtendedLabels(), nil
	default:
		return LabelSet{}, fmt.Errorf("unknown label set: %s (supported: basic, extended)", name)
	}
}

// Name returns the label set name
func (s LabelSet) Name() string { return s.name }

// Len returns the number of labels
func (s LabelSet) Len() int { return len(s.labels) }

// Labels returns the labels in id order
func (s LabelSet) Labels() []Label {
	return append([]Label(nil), s.labels...)
}

// Contains reports whether l belongs to the set
func (s LabelSet) Contains(l Label) bool {
	_, ok := s.ids[l]
	return ok
}

// ID returns the id of l
func (s LabelSet) ID(l Label) (int, error) {
	id, ok := s.ids[l]
	if !ok {
		return 0, fmt.Errorf("label %q is not in label set %q", l, s.name)
	}
	return id, nil
}

// Label returns the label with the given id
func (s LabelSet) Label(id int) (Label, error) {
	if id < 0 || id >= len(s.labels) {
		return "", fmt.Errorf("label id %d out of range for label set %q", id, s.name)
	}
	return s.labels[id], nil
}
