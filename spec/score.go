package spec

import "time"

// Dimension weights for the overall score.
const (
	WeightCompleteness = 0.35
	WeightAmbiguity    = 0.25
	WeightConsistency  = 0.25
	WeightGroundedness = 0.15
)

// DimensionScore holds a 0-100 score for one axis plus human-readable detail
// lines explaining how it was reached.
type DimensionScore struct {
	Score   int      `json:"score"`
	Details []string `json:"details,omitempty"`
}

// Issue is a single quality finding. NodeID and Field localize the finding
// when it concerns a specific node or one of its regenerable fields; both may
// be empty for graph-level findings. Field is a raw string rather than a
// FieldKind: model-produced issues may carry unrecognized field names, and
// the autogeneration inference treats "unrecognized" differently from
// "absent".
type Issue struct {
	Severity  Severity  `json:"severity"`
	Dimension Dimension `json:"dimension"`
	NodeID    string    `json:"nodeId,omitempty"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message"`
}

// Score is the full result of one analysis pass. It is recomputed wholesale
// on every pass and attached to the graph as a derived, disposable
// annotation; issues are never accumulated across passes.
type Score struct {
	Overall      int            `json:"overall"`
	Completeness DimensionScore `json:"completeness"`
	Ambiguity    DimensionScore `json:"ambiguity"`
	Consistency  DimensionScore `json:"consistency"`
	Groundedness DimensionScore `json:"groundedness"`
	Issues       []Issue        `json:"issues"`
	Suggestions  []string       `json:"suggestions"`
	AnalyzedAt   time.Time      `json:"analyzedAt"`
}

// Dimension returns the score record for the named dimension.
// Unknown dimensions return a zero record.
func (s *Score) Dimension(d Dimension) DimensionScore {
	switch d {
	case DimCompleteness:
		return s.Completeness
	case DimAmbiguity:
		return s.Ambiguity
	case DimConsistency:
		return s.Consistency
	case DimGroundedness:
		return s.Groundedness
	}
	return DimensionScore{}
}

// WeightedOverall computes the rounded weighted sum of the four dimension
// scores using the fixed dimension weights.
func WeightedOverall(completeness, ambiguity, consistency, groundedness int) int {
	sum := float64(completeness)*WeightCompleteness +
		float64(ambiguity)*WeightAmbiguity +
		float64(consistency)*WeightConsistency +
		float64(groundedness)*WeightGroundedness
	return int(sum + 0.5)
}

// Clamp bounds a score to the [0,100] range.
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
