package triage

// Decision reasons. These exact phrases are part of the public contract and
// surface to callers unchanged.
const (
	ReasonPersonalIssue   = "Personal / non-maintenance issue detected"
	ReasonLowConfidence   = "Low confidence classification and no clear maintenance keywords"
	ReasonKeywordMatch    = "Accepted via maintenance keywords"
	ReasonModelPrediction = "Accepted via model prediction"
)

// Verdict is the engine's decision for one complaint: accept/reject plus the
// derived category, priority, and confidence. Category and Priority are empty
// iff the complaint was rejected.
type Verdict struct {
	Valid      bool    `json:"valid"`
	Reason     string  `json:"reason"`
	Category   string  `json:"category,omitempty"`
	Priority   string  `json:"priority,omitempty"`
	Confidence float64 `json:"confidence"`
}
