// Package triage decides whether a free-text maintenance complaint is a
// legitimate ticket. It defines the Classifier contract (external model),
// the lexical keyword matcher, the decision Engine, and the Verdict model.
package triage
