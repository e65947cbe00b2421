package triage

import "context"

// Classifier is the interface for the external text-classification model.
// Implementations map complaint text to probability distributions over two
// independent label sets: maintenance category and priority.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// Classification is the model's output for one piece of text.
type Classification struct {
	Category Distribution
	Priority Distribution
}

// Distribution maps a label to its predicted probability.
type Distribution map[string]float64

// Top returns the arg-max label and its probability. Ties break toward the
// lexicographically smaller label so results are deterministic across runs.
// An empty distribution returns ("", 0).
func (d Distribution) Top() (string, float64) {
	var (
		top  string
		prob float64
		seen bool
	)
	for label, p := range d {
		if !seen || p > prob || (p == prob && label < top) {
			top, prob = label, p
			seen = true
		}
	}
	return top, prob
}
