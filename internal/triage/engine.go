package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

const (
	// confidenceFloor rejects keyword-less complaints the model is unsure about.
	confidenceFloor = 0.20

	// keywordBoost is added to the model confidence when a maintenance term
	// matched, capped at confidenceCap.
	keywordBoost  = 0.20
	confidenceCap = 0.99
)

// EngineHooks are optional observation points wired by main for metrics.
type EngineHooks struct {
	// OnClassify fires after every classifier call with its duration in
	// seconds and any error.
	OnClassify func(duration float64, err error)

	// OnVerdict fires once per successful evaluation.
	OnVerdict func(v *Verdict)
}

// Engine fuses the statistical classifier with deterministic keyword
// heuristics to produce a Verdict. It is pure aside from the classifier call:
// same text and model output always yield the same decision.
type Engine struct {
	classifier Classifier
	logger     log.Logger
	hooks      EngineHooks
}

// NewEngine creates a triage engine with the given classifier.
func NewEngine(classifier Classifier, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		classifier: classifier,
		logger:     logger,
		hooks:      hooks,
	}
}

// Evaluate runs the decision policy over one complaint. Ordered rules, first
// match wins:
//
//  1. a personal-term token match vetoes the complaint outright, regardless of
//     model confidence or maintenance evidence
//  2. a maintenance-term substring match boosts the model confidence
//  3. without maintenance evidence, confidence below the floor rejects
//  4. otherwise the complaint is accepted with the model's arg-max labels
//
// Rejection is a normal Verdict, not an error; Evaluate fails only when the
// classifier itself is unavailable. Empty or degenerate text gets no special
// treatment and flows through classification and keyword checks like any other.
func (e *Engine) Evaluate(ctx context.Context, text string) (*Verdict, error) {
	norm := Normalize(text)

	start := time.Now()
	cls, err := e.classifier.Classify(ctx, norm)
	elapsed := time.Since(start).Seconds()
	if e.hooks.OnClassify != nil {
		e.hooks.OnClassify(elapsed, err)
	}
	if err != nil {
		e.logger.Error(ctx, err, "classifier call failed")
		return nil, fmt.Errorf("classify: %w", err)
	}

	category, catProb := cls.Category.Top()
	priority, priProb := cls.Priority.Top()
	raw := catProb
	if priProb > raw {
		raw = priProb
	}

	maintenance := hasMaintenanceTerm(norm)
	personal := hasPersonalTerm(norm)

	v := &Verdict{Confidence: raw}

	switch {
	case personal:
		v.Reason = ReasonPersonalIssue

	default:
		if maintenance {
			v.Confidence = raw + keywordBoost
			if v.Confidence > confidenceCap {
				v.Confidence = confidenceCap
			}
		}
		if !maintenance && v.Confidence < confidenceFloor {
			v.Reason = ReasonLowConfidence
			break
		}

		v.Valid = true
		v.Category = category
		v.Priority = priority
		v.Reason = ReasonModelPrediction
		if maintenance {
			v.Reason = ReasonKeywordMatch
		}
	}

	e.logger.Info(ctx, "complaint evaluated",
		"valid", v.Valid,
		"reason", v.Reason,
		"category", v.Category,
		"priority", v.Priority,
		"confidence", v.Confidence,
		"raw_confidence", raw,
		"maintenance_term", maintenance,
		"personal_term", personal,
		"classify_duration", elapsed,
	)

	if e.hooks.OnVerdict != nil {
		e.hooks.OnVerdict(v)
	}
	return v, nil
}
