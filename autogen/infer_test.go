package autogen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speccanvas/speccanvas/spec"
)

func TestInferFieldFromIssueExplicitField(t *testing.T) {
	t.Run("explicit field wins over message keywords", func(t *testing.T) {
		field, ok := InferFieldFromIssue(spec.Issue{
			Field:   "behavior",
			Message: "The intent and examples for this node are missing.",
		})
		require.True(t, ok)
		assert.Equal(t, spec.FieldBehavior, field)
	})

	t.Run("unrecognized explicit field yields none, no keyword fallback", func(t *testing.T) {
		field, ok := InferFieldFromIssue(spec.Issue{
			Field:   "documentation",
			Message: "Add a clearer intent to this node.",
		})
		assert.False(t, ok)
		assert.Empty(t, field)
	})
}

func TestInferFieldFromIssueMessageKeywords(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    spec.FieldKind
	}{
		{"intent", "The purpose of this node is unclear.", spec.FieldIntent},
		{"behavior", "Add a detailed description of the processing steps.", spec.FieldBehavior},
		{"inputs only", "The input port has no data shape.", spec.FieldInputs},
		{"outputs only", "The output shape is undefined.", spec.FieldOutputs},
		{"examples", "Add an edge case covering malformed payloads.", spec.FieldExamples},
		{"constraints", "State the latency requirement explicitly.", spec.FieldConstraints},
		{"case insensitive", "INTENT is missing.", spec.FieldIntent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := InferFieldFromIssue(spec.Issue{Message: tt.message})
			require.True(t, ok)
			assert.Equal(t, tt.want, field)
		})
	}
}

func TestInferFieldFromIssueDimensionFallback(t *testing.T) {
	tests := []struct {
		name      string
		dimension spec.Dimension
		want      spec.FieldKind
		wantOK    bool
	}{
		{"completeness reads as behavior gap", spec.DimCompleteness, spec.FieldBehavior, true},
		{"ambiguity reads as intent gap", spec.DimAmbiguity, spec.FieldIntent, true},
		{"consistency has no field", spec.DimConsistency, "", false},
		{"groundedness has no field", spec.DimGroundedness, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := InferFieldFromIssue(spec.Issue{
				Dimension: tt.dimension,
				Message:   "Something is off here.", // no keywords
			})
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, field)
		})
	}
}

// Every issue either maps to a valid field or cleanly to none; no input may
// panic or produce an invalid field kind.
func TestInferFieldFromIssueTotality(t *testing.T) {
	issues := []spec.Issue{
		{},
		{Field: "garbage"},
		{Message: "input and output are both mentioned"},
		{Severity: spec.SeverityError, Dimension: "weird", Message: "???"},
		{Field: "intent", Dimension: spec.DimConsistency},
	}

	for _, issue := range issues {
		field, ok := InferFieldFromIssue(issue)
		if ok {
			assert.True(t, field.IsValid(), "issue %+v produced invalid field %q", issue, field)
		} else {
			assert.Empty(t, field)
		}
	}
}

func TestInferFieldFromSuggestion(t *testing.T) {
	g := &spec.Graph{
		Nodes: []*spec.Node{
			{ID: "n1", Data: spec.NodeData{Name: "Webhook"}},
			{ID: "n2", Data: spec.NodeData{Name: "Validate Input"}},
		},
	}

	t.Run("literal node name anchors the suggestion", func(t *testing.T) {
		field, nodeID, ok := InferFieldFromSuggestion(
			`Add more detail to "Validate Input" so its behavior is unambiguous.`, g)
		require.True(t, ok)
		assert.Equal(t, "n2", nodeID)
		assert.Equal(t, spec.FieldBehavior, field)
	})

	t.Run("no name match defaults to first node", func(t *testing.T) {
		field, nodeID, ok := InferFieldFromSuggestion(
			"Add edge-case examples alongside the happy path.", g)
		require.True(t, ok)
		assert.Equal(t, "n1", nodeID)
		assert.Equal(t, spec.FieldExamples, field)
	})

	t.Run("name matching is case-sensitive", func(t *testing.T) {
		_, nodeID, ok := InferFieldFromSuggestion(
			"Tighten the validate input step.", g)
		require.True(t, ok)
		assert.Equal(t, "n1", nodeID, "lowercased name must not match")
	})

	t.Run("unclassifiable suggestion defaults to behavior", func(t *testing.T) {
		field, _, ok := InferFieldFromSuggestion("Make it better.", g)
		require.True(t, ok)
		assert.Equal(t, spec.FieldBehavior, field)
	})

	t.Run("empty graph yields none", func(t *testing.T) {
		field, nodeID, ok := InferFieldFromSuggestion("Add examples.", &spec.Graph{})
		assert.False(t, ok)
		assert.Empty(t, field)
		assert.Empty(t, nodeID)
	})
}

func TestSuggestionShapeRules(t *testing.T) {
	g := &spec.Graph{Nodes: []*spec.Node{{ID: "n1", Data: spec.NodeData{Name: "Webhook"}}}}

	tests := []struct {
		name       string
		suggestion string
		want       spec.FieldKind
	}{
		{"shape with input", "Define the data shape of each input port.", spec.FieldInputs},
		{"shape with output", "Give the output port an explicit type.", spec.FieldOutputs},
		{"shape unanchored", "Declare data types for the payloads.", spec.FieldInputs},
		{"constraints", "Document the throughput requirement.", spec.FieldConstraints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, _, ok := InferFieldFromSuggestion(tt.suggestion, g)
			require.True(t, ok)
			assert.Equal(t, tt.want, field)
		})
	}
}
