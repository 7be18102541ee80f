// Package spec defines the specification graph data model: typed nodes with
// structured behavioral fields, directed port-to-port edges, global system
// context, and the derived quality score attached by an analysis pass.
package spec

// NodeType classifies a node's role in the specification graph.
// The set is closed; there is no further subtyping.
type NodeType string

const (
	// NodeTrigger is an entry point that starts a flow (webhook, schedule, event).
	NodeTrigger NodeType = "trigger"

	// NodeProcess is an internal transformation or decision step.
	NodeProcess NodeType = "process"

	// NodeIntegration is a call out to an external system.
	NodeIntegration NodeType = "integration"

	// NodeOutput is a terminal result of a flow (response, file, notification).
	NodeOutput NodeType = "output"
)

// IsValid checks if a node type string is a known type.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTrigger, NodeProcess, NodeIntegration, NodeOutput:
		return true
	}
	return false
}

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// ParseNodeType converts a string to a NodeType, returning empty for invalid values.
func ParseNodeType(s string) NodeType {
	t := NodeType(s)
	if t.IsValid() {
		return t
	}
	return ""
}

// Severity ranks how serious a quality issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid checks if a severity string is a known severity.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Dimension is one of the four scoring axes.
// Ambiguity is inverted: 100 means unambiguous.
type Dimension string

const (
	DimCompleteness Dimension = "completeness"
	DimAmbiguity    Dimension = "ambiguity"
	DimConsistency  Dimension = "consistency"
	DimGroundedness Dimension = "groundedness"
)

// IsValid checks if a dimension string is a known dimension.
func (d Dimension) IsValid() bool {
	switch d {
	case DimCompleteness, DimAmbiguity, DimConsistency, DimGroundedness:
		return true
	}
	return false
}

// FieldKind identifies one of the six regenerable specification fields on a node.
type FieldKind string

const (
	FieldIntent      FieldKind = "intent"
	FieldBehavior    FieldKind = "behavior"
	FieldInputs      FieldKind = "inputs"
	FieldOutputs     FieldKind = "outputs"
	FieldExamples    FieldKind = "examples"
	FieldConstraints FieldKind = "constraints"
)

// IsValid checks if a field kind string is one of the six regenerable fields.
func (f FieldKind) IsValid() bool {
	switch f {
	case FieldIntent, FieldBehavior, FieldInputs, FieldOutputs, FieldExamples, FieldConstraints:
		return true
	}
	return false
}

// ParseFieldKind converts a string to a FieldKind, returning empty for invalid values.
func ParseFieldKind(s string) FieldKind {
	f := FieldKind(s)
	if f.IsValid() {
		return f
	}
	return ""
}
