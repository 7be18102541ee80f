package analyze

import (
	"fmt"
	"strings"

	"github.com/speccanvas/speccanvas/spec"
)

// analysisSystemPrompt instructs the model to act as a specification
// reviewer. The response contract is strict raw JSON: fenced or prefixed
// output fails decoding and drops the pass to the heuristic scorer.
const analysisSystemPrompt = `You are a software specification quality reviewer. You evaluate graph-shaped specifications built from typed nodes (trigger, process, integration, output) connected by data-flow edges.

Respond with raw JSON only. Do not wrap the JSON in markdown code fences. Do not include any text before or after the JSON object.`

// analysisUserPrompt is the user prompt template. The %s placeholder is
// replaced with the serialized graph.
const analysisUserPrompt = `Evaluate this specification across four dimensions, each scored 0-100:

1. **completeness**: Are system context, node intents, behaviors, port data shapes, and examples filled in? Uncustomized names, missing behaviors, and "unknown" port shapes lower the score.
2. **ambiguity**: Is the specification unambiguous? 100 means every statement has exactly one reasonable reading. Vague intents, undefined terms, and contradictory descriptions lower the score.
3. **consistency**: Do the pieces fit together? Disconnected nodes, edges carrying data no port produces, and behaviors contradicting neighboring nodes lower the score.
4. **groundedness**: Is this implementable as described? Unrealistic behaviors, missing error paths, and hand-waved integrations lower the score.

The overall score is the weighted sum: completeness 0.35, ambiguity 0.25, consistency 0.25, groundedness 0.15.

Specification:
---
%s
---

Respond with exactly this JSON structure:
{
  "overall": 0,
  "completeness": {"score": 0, "details": ["..."]},
  "ambiguity": {"score": 0, "details": ["..."]},
  "consistency": {"score": 0, "details": ["..."]},
  "groundedness": {"score": 0, "details": ["..."]},
  "issues": [{"severity": "error|warning|info", "dimension": "completeness|ambiguity|consistency|groundedness", "nodeId": "...", "field": "...", "message": "..."}],
  "suggestions": ["..."]
}`

// BuildAnalysisPrompt serializes the full graph into the analysis prompt:
// system context, topology with resolved endpoint names, and each node's
// specification fields.
func BuildAnalysisPrompt(g *spec.Graph) string {
	var sb strings.Builder

	sb.WriteString("# System Context\n")
	filled := 0
	for _, f := range g.Context.Fields() {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", f.Name, f.Value)
		filled++
	}
	if filled == 0 {
		sb.WriteString("(not provided)\n")
	}

	sb.WriteString("\n# Flow\n")
	if len(g.Edges) == 0 {
		sb.WriteString("(no edges)\n")
	}
	for _, e := range g.Edges {
		source := nodeLabel(g, e.Source)
		target := nodeLabel(g, e.Target)
		if e.Label != "" {
			fmt.Fprintf(&sb, "- %s -> %s (%s)\n", source, target, e.Label)
		} else {
			fmt.Fprintf(&sb, "- %s -> %s\n", source, target)
		}
	}

	sb.WriteString("\n# Nodes\n")
	for _, n := range g.Nodes {
		writeNodeSection(&sb, n)
	}

	return fmt.Sprintf(analysisUserPrompt, sb.String())
}

// nodeLabel resolves a node ID to its display name, falling back to the raw
// ID for dangling edge endpoints.
func nodeLabel(g *spec.Graph, id string) string {
	if n := g.NodeByID(id); n != nil {
		return n.Data.Name
	}
	return id
}

// writeNodeSection renders one node's specification fields, omitting empty ones.
func writeNodeSection(sb *strings.Builder, n *spec.Node) {
	fmt.Fprintf(sb, "\n## %s [%s] (id: %s)\n", n.Data.Name, n.Type, n.ID)
	if n.Data.Intent != "" {
		fmt.Fprintf(sb, "Intent: %s\n", n.Data.Intent)
	}
	writePorts(sb, "Inputs", n.Data.Inputs)
	writePorts(sb, "Outputs", n.Data.Outputs)
	if n.Data.Behavior != "" {
		fmt.Fprintf(sb, "Behavior:\n%s\n", n.Data.Behavior)
	}
	for i, ex := range n.Data.Examples {
		fmt.Fprintf(sb, "Example %d: input=%s output=%s", i+1, ex.Input, ex.Output)
		if ex.Notes != "" {
			fmt.Fprintf(sb, " (%s)", ex.Notes)
		}
		sb.WriteString("\n")
	}
	for _, c := range n.Data.Constraints {
		fmt.Fprintf(sb, "Constraint: %s\n", c)
	}
}

func writePorts(sb *strings.Builder, label string, ports []spec.Port) {
	if len(ports) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for _, p := range ports {
		shape := p.Shape
		if shape == "" {
			shape = spec.ShapeUnknown
		}
		fmt.Fprintf(sb, "- %s (%s)", p.Name, shape)
		if p.Description != "" {
			fmt.Fprintf(sb, ": %s", p.Description)
		}
		sb.WriteString("\n")
	}
}
