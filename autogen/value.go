package autogen

import "github.com/speccanvas/speccanvas/spec"

// ValueSource records where a generated field value came from.
type ValueSource string

const (
	// SourceModel marks content produced by the external model.
	SourceModel ValueSource = "model"

	// SourceTemplate marks deterministic fallback content, derived only
	// from the node's name and type.
	SourceTemplate ValueSource = "template"
)

// FieldValue is the result of one field generation. Exactly one of the
// value members is populated, selected by Field: Text for intent and
// behavior, Ports for inputs and outputs, Examples for examples,
// Constraints for constraints.
type FieldValue struct {
	NodeID string         `json:"nodeId"`
	Field  spec.FieldKind `json:"field"`
	Source ValueSource    `json:"source"`

	Text        string         `json:"text,omitempty"`
	Ports       []spec.Port    `json:"ports,omitempty"`
	Examples    []spec.Example `json:"examples,omitempty"`
	Constraints []string       `json:"constraints,omitempty"`
}

// Apply writes the generated value onto the node's corresponding field.
func (v *FieldValue) Apply(n *spec.Node) {
	switch v.Field {
	case spec.FieldIntent:
		n.Data.Intent = v.Text
	case spec.FieldBehavior:
		n.Data.Behavior = v.Text
	case spec.FieldInputs:
		n.Data.Inputs = v.Ports
	case spec.FieldOutputs:
		n.Data.Outputs = v.Ports
	case spec.FieldExamples:
		n.Data.Examples = v.Examples
	case spec.FieldConstraints:
		n.Data.Constraints = v.Constraints
	}
}
