package autogen

import (
	"strings"

	"github.com/speccanvas/speccanvas/spec"
)

// InferFieldFromIssue determines which field an issue points at.
//
// Precedence: an explicit field name on the issue wins outright: an issue
// tagged field="behavior" maps to behavior no matter what its message says,
// and an unrecognized explicit name yields none without falling through to
// keyword matching. Issues without a field are classified by message
// keywords, then by dimension (completeness reads as a behavior gap,
// ambiguity as an intent gap).
func InferFieldFromIssue(issue spec.Issue) (spec.FieldKind, bool) {
	if issue.Field != "" {
		field := spec.ParseFieldKind(issue.Field)
		return field, field != ""
	}

	if field, ok := applyRules(issueMessageRules, issue.Message); ok {
		return field, true
	}

	switch issue.Dimension {
	case spec.DimCompleteness:
		return spec.FieldBehavior, true
	case spec.DimAmbiguity:
		return spec.FieldIntent, true
	}
	return "", false
}

// InferFieldFromSuggestion determines which (field, node) a free-text
// improvement suggestion targets. Suggestions are not anchored to a node, so
// the target is picked by scanning the text for any node's literal name
// (first match in graph order wins), defaulting to the first node. A graph
// with no nodes yields none.
func InferFieldFromSuggestion(suggestion string, g *spec.Graph) (spec.FieldKind, string, bool) {
	if len(g.Nodes) == 0 {
		return "", "", false
	}

	nodeID := g.Nodes[0].ID
	for _, n := range g.Nodes {
		if n.Data.Name != "" && strings.Contains(suggestion, n.Data.Name) {
			nodeID = n.ID
			break
		}
	}

	field, ok := applyRules(suggestionRules, suggestion)
	if !ok {
		field = spec.FieldBehavior
	}
	return field, nodeID, true
}
