package model

import "fmt"

// Example is one training unit: context tokens, separator, hypothesis tokens,
// and one label per token.
type Example struct {
	Text   []string `json:"text"`
	Labels []Label  `json:"labels"`
}

// Validate checks the length invariant and label membership
func (e Example) Validate(labels LabelSet) error {
	if len(e.Text) != len(e.Labels) {
		return fmt.Errorf("example has %d tokens but %d labels", len(e.Text), len(e.Labels))
	}
	return checkLabels(e.Labels, labels)
}

// RetrievalExample keeps the retrieved context and the hypothesis apart.
// Labels align with Sent.
type RetrievalExample struct {
	Ctx    []string `json:"ctx"`
	Sent   []string `json:"sent"`
	Labels []Label  `json:"labels"`
}

// Validate checks the length invariant and label membership
func (e RetrievalExample) Validate(labels LabelSet) error {
	if len(e.Sent) != len(e.Labels) {
		return fmt.Errorf("example has %d hypothesis tokens but %d labels", len(e.Sent), len(e.Labels))
	}
	return checkLabels(e.Labels, labels)
}

// Flatten joins context and hypothesis around sep. Context tokens are labelled O.
func (e RetrievalExample) Flatten(sep string) Example {
	text := make([]string, 0, len(e.Ctx)+1+len(e.Sent))
	text = append(text, e.Ctx...)
	text = append(text, sep)
	text = append(text, e.Sent...)

	labels := make([]Label, 0, len(text))
	for i := 0; i <= len(e.Ctx); i++ {
		labels = append(labels, LabelO)
	}
	labels = append(labels, e.Labels...)

	return Example{Text: text, Labels: labels}
}

func checkLabels(ls []Label, set LabelSet) error {
	for i, l := range ls {
		if !set.Contains(l) {
			return fmt.Errorf("token %d: label %q is not in label set %q", i, l, set.Name())
		}
	}
	return nil
}
