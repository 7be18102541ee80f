package spec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash returns a stable hash of the graph's scoring-relevant content.
// Node positions are excluded so that dragging nodes around the canvas does
// not register as a content change for the debounced analysis trigger.
func (g *Graph) ContentHash() string {
	type nodeContent struct {
		ID   string   `json:"id"`
		Type NodeType `json:"type"`
		Data NodeData `json:"data"`
	}

	nodes := make([]nodeContent, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = nodeContent{ID: n.ID, Type: n.Type, Data: n.Data}
	}

	payload := struct {
		Context SystemContext `json:"context"`
		Nodes   []nodeContent `json:"nodes"`
		Edges   []Edge        `json:"edges"`
	}{g.Context, nodes, g.Edges}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of plain structs cannot fail; keep the signature simple.
		return ""
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the graph. Scoring treats the graph as an
// immutable snapshot; callers clone before handing it to a concurrent pass.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Context: g.Context,
		Nodes:   make([]*Node, len(g.Nodes)),
		Edges:   append([]Edge(nil), g.Edges...),
	}
	for i, n := range g.Nodes {
		copied := *n
		copied.Data.Inputs = append([]Port(nil), n.Data.Inputs...)
		copied.Data.Outputs = append([]Port(nil), n.Data.Outputs...)
		copied.Data.Examples = append([]Example(nil), n.Data.Examples...)
		copied.Data.Constraints = append([]string(nil), n.Data.Constraints...)
		out.Nodes[i] = &copied
	}
	return out
}
