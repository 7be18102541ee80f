package autogen

import (
	"fmt"

	"github.com/speccanvas/speccanvas/spec"
)

// TemplateValue produces the deterministic fallback content for a field.
// It is derived entirely from the node's name and type, never from field
// content, which keeps templated values distinguishable from model output.
func TemplateValue(n *spec.Node, field spec.FieldKind) *FieldValue {
	v := &FieldValue{NodeID: n.ID, Field: field, Source: SourceTemplate}

	switch field {
	case spec.FieldIntent:
		v.Text = templateIntent(n)
	case spec.FieldBehavior:
		v.Text = templateBehavior(n)
	case spec.FieldInputs:
		v.Ports = templatePorts(n.Data.Inputs, "input")
	case spec.FieldOutputs:
		v.Ports = templatePorts(n.Data.Outputs, "output")
	case spec.FieldExamples:
		v.Examples = templateExamples(n)
	case spec.FieldConstraints:
		v.Constraints = templateConstraints(n)
	}
	return v
}

func templateIntent(n *spec.Node) string {
	switch n.Type {
	case spec.NodeTrigger:
		return fmt.Sprintf("Start the flow when %s fires.", n.Data.Name)
	case spec.NodeProcess:
		return fmt.Sprintf("Transform incoming data in the %s step.", n.Data.Name)
	case spec.NodeIntegration:
		return fmt.Sprintf("Exchange data with the external system behind %s.", n.Data.Name)
	case spec.NodeOutput:
		return fmt.Sprintf("Deliver the final result through %s.", n.Data.Name)
	default:
		return fmt.Sprintf("Handle the %s step of the flow.", n.Data.Name)
	}
}

func templateBehavior(n *spec.Node) string {
	return fmt.Sprintf(`1. Receive and validate the incoming data for %s.
2. Apply the core logic of this %s step.
3. On failure, report a structured error and do not emit partial results.
4. Pass the result to the connected downstream nodes.`, n.Data.Name, n.Type)
}

// templatePorts fills in missing port information. With no ports at all it
// invents a single generic one; existing ports keep their names but get the
// "unknown" shape and empty descriptions replaced with usable defaults.
func templatePorts(existing []spec.Port, direction string) []spec.Port {
	if len(existing) == 0 {
		return []spec.Port{{
			Name:        direction,
			Description: fmt.Sprintf("Primary %s of this node", direction),
			Shape:       "JSON object",
		}}
	}

	ports := make([]spec.Port, len(existing))
	for i, p := range existing {
		if p.Shape == "" || p.Shape == spec.ShapeUnknown {
			p.Shape = "JSON object"
		}
		if p.Description == "" {
			p.Description = fmt.Sprintf("The %s %s", p.Name, direction)
		}
		ports[i] = p
	}
	return ports
}

func templateExamples(n *spec.Node) []spec.Example {
	return []spec.Example{
		{
			Input:  `{"status": "ok"}`,
			Output: `{"result": "success"}`,
			Notes:  fmt.Sprintf("Happy path through %s", n.Data.Name),
		},
		{
			Input:  `{"status": "invalid"}`,
			Output: `{"error": "validation failed"}`,
			Notes:  fmt.Sprintf("Error path: %s rejects malformed input", n.Data.Name),
		},
	}
}

func templateConstraints(n *spec.Node) []string {
	return []string{
		fmt.Sprintf("%s must respond within 5 seconds under normal load.", n.Data.Name),
		fmt.Sprintf("%s must not lose data on transient failures; retries are idempotent.", n.Data.Name),
		fmt.Sprintf("All errors from %s are logged with enough context to reproduce.", n.Data.Name),
	}
}
