package autogen

import (
	"fmt"
	"strings"

	"github.com/speccanvas/speccanvas/spec"
)

// generationSystemPrompt frames the model as a spec author completing one
// field. The value member's shape depends on the field being generated.
const generationSystemPrompt = `You are completing one field of a node in a graph-shaped software specification. Write content that is specific to the node's role in the flow, consistent with its neighbors, and concrete enough to implement from.

Respond with raw JSON of the form {"value": ...}. The shape of "value" is given in the instructions. Do not include any text outside the JSON object.`

// fieldInstructions describe the expected "value" shape per field kind.
var fieldInstructions = map[spec.FieldKind]string{
	spec.FieldIntent:      `"value" is a single string: one sentence stating what this node is for.`,
	spec.FieldBehavior:    `"value" is a single markdown string: a numbered list of processing steps including validation and error handling.`,
	spec.FieldInputs:      `"value" is an array of ports: [{"name": "...", "description": "...", "shape": "..."}]. Shape is a concrete data type description, never "unknown".`,
	spec.FieldOutputs:     `"value" is an array of ports: [{"name": "...", "description": "...", "shape": "..."}]. Shape is a concrete data type description, never "unknown".`,
	spec.FieldExamples:    `"value" is an array of examples: [{"input": "...", "output": "...", "notes": "..."}]. Input and output are JSON strings; include at least one happy path and one error case.`,
	spec.FieldConstraints: `"value" is an array of strings, each one testable non-functional constraint.`,
}

// BuildGenerationPrompt serializes the target node, its system context, and
// its direction-labeled neighbors into a field-specific generation prompt.
func BuildGenerationPrompt(g *spec.Graph, n *spec.Node, field spec.FieldKind) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate the %q field for the node below.\n\n", field)

	fmt.Fprintf(&sb, "# Target node\n")
	writeNodeSpec(&sb, n)

	if filled := contextLines(g.Context); len(filled) > 0 {
		sb.WriteString("\n# System context\n")
		for _, line := range filled {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if neighbors := g.Neighbors(n.ID); len(neighbors) > 0 {
		sb.WriteString("\n# Connected nodes\n")
		for _, nb := range neighbors {
			fmt.Fprintf(&sb, "- %s %s [%s]", nb.Direction, nb.Node.Data.Name, nb.Node.Type)
			if nb.Node.Data.Intent != "" {
				fmt.Fprintf(&sb, ": %s", nb.Node.Data.Intent)
			}
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\n# Response shape\n%s\n", fieldInstructions[field])

	return sb.String()
}

func writeNodeSpec(sb *strings.Builder, n *spec.Node) {
	fmt.Fprintf(sb, "Name: %s\nType: %s\n", n.Data.Name, n.Type)
	if n.Data.Intent != "" {
		fmt.Fprintf(sb, "Intent: %s\n", n.Data.Intent)
	}
	if n.Data.Behavior != "" {
		fmt.Fprintf(sb, "Behavior:\n%s\n", n.Data.Behavior)
	}
	for _, p := range n.Data.Inputs {
		fmt.Fprintf(sb, "Input: %s (%s)\n", p.Name, orUnknown(p.Shape))
	}
	for _, p := range n.Data.Outputs {
		fmt.Fprintf(sb, "Output: %s (%s)\n", p.Name, orUnknown(p.Shape))
	}
	for _, c := range n.Data.Constraints {
		fmt.Fprintf(sb, "Constraint: %s\n", c)
	}
}

func orUnknown(shape string) string {
	if shape == "" {
		return spec.ShapeUnknown
	}
	return shape
}

func contextLines(c spec.SystemContext) []string {
	var lines []string
	for _, f := range c.Fields() {
		if f.Value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, f.Value))
		}
	}
	return lines
}
