// Package score implements the deterministic heuristic quality scorer.
// It is the always-available fallback behind the model-assisted analyzer:
// pure, no I/O, and bounded by node+edge count.
package score

import (
	"fmt"
	"time"

	"github.com/speccanvas/speccanvas/spec"
)

// Heuristic baselines. Semantic ambiguity and implementability judgments
// need a language model, so the heuristic pins those dimensions to fixed
// values rather than guessing.
const (
	ambiguityBaseline    = 50
	consistencyBaseline  = 80
	groundednessBaseline = 60

	// emptyGraphCompleteness is the floor applied when the graph has no nodes.
	emptyGraphCompleteness = 10

	// disconnectedPenalty is subtracted from consistency per unconnected node,
	// only once the graph has at least one edge.
	disconnectedPenalty = 10

	// contextBudget and nodeBudget split the 100 completeness points.
	contextBudget = 20
	nodeBudget    = 80
)

// Per-node completeness point values, summing to 100.
const (
	pointsCustomName    = 10
	pointsIntent        = 20
	pointsBehavior      = 30
	pointsInputShapes   = 15
	pointsOutputShapes  = 15
	pointsExamples      = 10
	minIntentLength     = 20
	minBehaviorLength   = 50
	intentPlaceholder   = "Describe"
	maxSuggestions      = 3
)

// genericSuggestions is the fixed, ranked improvement list used in heuristic
// mode. It is not tailored to graph content; only the top entries are kept.
var genericSuggestions = []string{
	"Add detailed behavior descriptions with error handling to each node.",
	"Define explicit data shapes for every input and output port.",
	"Add edge-case examples alongside the happy path.",
	"Fill in the system context: environment, security, and dependencies.",
	"Connect all nodes so data flow through the system is explicit.",
}

// Score computes a deterministic quality score for the graph. It never
// fails: an empty graph produces the degenerate floor score.
func Score(g *spec.Graph) *spec.Score {
	var issues []spec.Issue

	completeness, details, issues := scoreCompleteness(g, issues)
	consistency, consistencyDetails, issues := scoreConsistency(g, issues)
	issues = appendStructuralNudges(g, issues)

	s := &spec.Score{
		Completeness: spec.DimensionScore{Score: completeness, Details: details},
		Ambiguity: spec.DimensionScore{
			Score:   ambiguityBaseline,
			Details: []string{"Heuristic mode does not detect semantic ambiguity; baseline applied."},
		},
		Consistency: spec.DimensionScore{Score: consistency, Details: consistencyDetails},
		Groundedness: spec.DimensionScore{
			Score:   groundednessBaseline,
			Details: []string{"Implementability judgment requires model-assisted analysis; baseline applied."},
		},
		Issues:      issues,
		Suggestions: topSuggestions(),
		AnalyzedAt:  time.Now(),
	}
	s.Overall = spec.WeightedOverall(s.Completeness.Score, s.Ambiguity.Score, s.Consistency.Score, s.Groundedness.Score)
	return s
}

// scoreCompleteness computes the completeness dimension: up to 20 points from
// the system context and up to 80 points from averaged per-node scores.
func scoreCompleteness(g *spec.Graph, issues []spec.Issue) (int, []string, []spec.Issue) {
	var details []string

	filled := g.Context.CountFilled()
	contextPoints := float64(filled) / 6.0 * contextBudget
	details = append(details, fmt.Sprintf("%d of 6 system context fields filled", filled))

	if filled < 3 {
		issues = append(issues, spec.Issue{
			Severity:  spec.SeverityWarning,
			Dimension: spec.DimCompleteness,
			Message:   fmt.Sprintf("Only %d of 6 system context fields are filled in; describe the environment the system runs in.", filled),
		})
	}

	if len(g.Nodes) == 0 {
		issues = append(issues, spec.Issue{
			Severity:  spec.SeverityError,
			Dimension: spec.DimCompleteness,
			Message:   "The specification has no nodes. Add at least a Trigger and an Output node.",
		})
		details = append(details, "No nodes in the graph")
		return emptyGraphCompleteness, details, issues
	}

	total := 0
	for _, n := range g.Nodes {
		points, nodeIssues := scoreNode(n)
		total += points
		issues = append(issues, nodeIssues...)
	}
	avg := float64(total) / float64(len(g.Nodes))
	details = append(details, fmt.Sprintf("Average node specification score: %.0f/100 across %d nodes", avg, len(g.Nodes)))

	completeness := spec.Clamp(int(contextPoints + avg/100.0*nodeBudget))
	return completeness, details, issues
}

// scoreNode computes the 0-100 per-node completeness contribution and any
// issues the node's fields raise.
func scoreNode(n *spec.Node) (int, []spec.Issue) {
	var issues []spec.Issue
	points := 0

	if n.HasCustomName() {
		points += pointsCustomName
	}
	if len(n.Data.Intent) > minIntentLength {
		points += pointsIntent
	}
	if len(n.Data.Behavior) > minBehaviorLength {
		points += pointsBehavior
	}
	if anyDefinedShape(n.Data.Inputs) {
		points += pointsInputShapes
	}
	if anyDefinedShape(n.Data.Outputs) {
		points += pointsOutputShapes
	}
	if len(n.Data.Examples) > 0 {
		points += pointsExamples
	}

	if len(n.Data.Intent) < minIntentLength || hasPlaceholderIntent(n.Data.Intent) {
		issues = append(issues, spec.Issue{
			Severity:  spec.SeverityWarning,
			Dimension: spec.DimAmbiguity,
			NodeID:    n.ID,
			Field:     string(spec.FieldIntent),
			Message:   fmt.Sprintf("Node %q needs a clear one-sentence intent.", n.Data.Name),
		})
	}

	return points, issues
}

func anyDefinedShape(ports []spec.Port) bool {
	for _, p := range ports {
		if p.HasDefinedShape() {
			return true
		}
	}
	return false
}

func hasPlaceholderIntent(intent string) bool {
	return len(intent) >= len(intentPlaceholder) && intent[:len(intentPlaceholder)] == intentPlaceholder
}

// scoreConsistency starts at the baseline and subtracts for each node left
// unconnected while the graph has edges. Edge-free graphs are exempt: a
// draft of isolated nodes is not penalized prematurely.
func scoreConsistency(g *spec.Graph, issues []spec.Issue) (int, []string, []spec.Issue) {
	consistency := consistencyBaseline
	var details []string

	if len(g.Edges) == 0 {
		details = append(details, "No edges yet; connectivity not evaluated")
		return consistency, details, issues
	}

	disconnected := 0
	for _, n := range g.Nodes {
		if !g.IsConnected(n.ID) {
			disconnected++
			consistency -= disconnectedPenalty
			issues = append(issues, spec.Issue{
				Severity:  spec.SeverityWarning,
				Dimension: spec.DimConsistency,
				NodeID:    n.ID,
				Message:   fmt.Sprintf("Node %q is not connected to the rest of the flow.", n.Data.Name),
			})
		}
	}
	if disconnected == 0 {
		details = append(details, "All nodes participate in the data flow")
	} else {
		details = append(details, fmt.Sprintf("%d disconnected node(s)", disconnected))
	}

	return spec.Clamp(consistency), details, issues
}

// appendStructuralNudges suggests a Trigger or Output node when a non-empty
// graph is missing one. These are informational and do not affect scores.
func appendStructuralNudges(g *spec.Graph, issues []spec.Issue) []spec.Issue {
	if len(g.Nodes) == 0 {
		return issues
	}
	if !g.HasNodeOfType(spec.NodeTrigger) {
		issues = append(issues, spec.Issue{
			Severity:  spec.SeverityInfo,
			Dimension: spec.DimCompleteness,
			Message:   "No Trigger node: how does this system start? Consider adding one.",
		})
	}
	if !g.HasNodeOfType(spec.NodeOutput) {
		issues = append(issues, spec.Issue{
			Severity:  spec.SeverityInfo,
			Dimension: spec.DimCompleteness,
			Message:   "No Output node: what does this system produce? Consider adding one.",
		})
	}
	return issues
}

func topSuggestions() []string {
	return append([]string(nil), genericSuggestions[:maxSuggestions]...)
}
