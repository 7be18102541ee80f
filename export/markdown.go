package export

import (
	"fmt"
	"strings"

	"github.com/speccanvas/speccanvas/spec"
)

// WriteMarkdown renders the graph as a human-readable specification
// document: system context first, the flow as an edge list, then one
// section per node with empty fields omitted.
func WriteMarkdown(g *spec.Graph) string {
	var sb strings.Builder

	sb.WriteString("# System Specification\n\n")

	writeContextSection(&sb, g.Context)
	writeFlowSection(&sb, g)

	for _, n := range g.Nodes {
		writeNodeSection(&sb, n)
	}

	return sb.String()
}

func writeContextSection(sb *strings.Builder, c spec.SystemContext) {
	var lines []string
	labels := map[string]string{
		"environment":    "Environment",
		"constraints":    "Constraints",
		"infrastructure": "Infrastructure",
		"dependencies":   "Dependencies",
		"security":       "Security",
		"nonFunctional":  "Non-functional requirements",
	}
	for _, f := range c.Fields() {
		if f.Value != "" {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", labels[f.Name], f.Value))
		}
	}
	if len(lines) == 0 {
		return
	}

	sb.WriteString("## System Context\n\n")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeFlowSection(sb *strings.Builder, g *spec.Graph) {
	if len(g.Edges) == 0 {
		return
	}

	sb.WriteString("## Flow\n\n")
	for _, e := range g.Edges {
		source := displayName(g, e.Source)
		target := displayName(g, e.Target)
		if e.Label != "" {
			fmt.Fprintf(sb, "- %s → %s (%s)\n", source, target, e.Label)
		} else {
			fmt.Fprintf(sb, "- %s → %s\n", source, target)
		}
	}
	sb.WriteString("\n")
}

func displayName(g *spec.Graph, nodeID string) string {
	if n := g.NodeByID(nodeID); n != nil {
		return n.Data.Name
	}
	return nodeID
}

func writeNodeSection(sb *strings.Builder, n *spec.Node) {
	fmt.Fprintf(sb, "## %s (%s)\n\n", n.Data.Name, n.Type)

	if n.Data.Intent != "" {
		fmt.Fprintf(sb, "**Intent**: %s\n\n", n.Data.Intent)
	}

	writePortTable(sb, "Inputs", n.Data.Inputs)
	writePortTable(sb, "Outputs", n.Data.Outputs)

	if n.Data.Behavior != "" {
		fmt.Fprintf(sb, "### Behavior\n\n%s\n\n", n.Data.Behavior)
	}

	if len(n.Data.Examples) > 0 {
		sb.WriteString("### Examples\n\n")
		for _, ex := range n.Data.Examples {
			if ex.Notes != "" {
				fmt.Fprintf(sb, "**%s**\n\n", ex.Notes)
			}
			fmt.Fprintf(sb, "- Input: `%s`\n- Output: `%s`\n\n", ex.Input, ex.Output)
		}
	}

	if len(n.Data.Constraints) > 0 {
		sb.WriteString("### Constraints\n\n")
		for _, c := range n.Data.Constraints {
			fmt.Fprintf(sb, "- %s\n", c)
		}
		sb.WriteString("\n")
	}
}

func writePortTable(sb *strings.Builder, label string, ports []spec.Port) {
	if len(ports) == 0 {
		return
	}

	fmt.Fprintf(sb, "### %s\n\n", label)
	sb.WriteString("| Name | Shape | Description |\n|---|---|---|\n")
	for _, p := range ports {
		shape := p.Shape
		if shape == "" {
			shape = spec.ShapeUnknown
		}
		fmt.Fprintf(sb, "| %s | %s | %s |\n", p.Name, shape, p.Description)
	}
	sb.WriteString("\n")
}
