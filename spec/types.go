package spec

import (
	"fmt"

	"github.com/google/uuid"
)

// ShapeUnknown is the sentinel value for a port whose type has not been
// specified yet. It is distinct from an empty shape and never counts as a
// defined data shape when scoring.
const ShapeUnknown = "unknown"

// contextFilledThreshold is the minimum length for a system context field to
// count as filled. Shorter text is treated as placeholder content.
const contextFilledThreshold = 10

// Port is a named input or output slot on a node. Shape is a free-text type
// description ("JSON object with user_id and email", "CSV stream", ...).
type Port struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Shape       string `json:"shape,omitempty"`
}

// HasDefinedShape reports whether the port carries a real data shape,
// i.e. one that is non-empty and not the "unknown" sentinel.
func (p Port) HasDefinedShape() bool {
	return p.Shape != "" && p.Shape != ShapeUnknown
}

// Example is a concrete input/output pair illustrating node behavior.
// Input and Output are free text, conventionally JSON.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Notes  string `json:"notes,omitempty"`
}

// IsWeak reports whether the example carries no real information: both
// payloads are the empty-object literal, or the scenario notes are missing.
func (e Example) IsWeak() bool {
	return (e.Input == "{}" && e.Output == "{}") || e.Notes == ""
}

// Position is the node's placement on the editor canvas.
// It is carried through serialization but never read by scoring.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the structured behavioral specification carried by a node.
type NodeData struct {
	Name        string    `json:"name"`
	Intent      string    `json:"intent,omitempty"`
	Inputs      []Port    `json:"inputs,omitempty"`
	Outputs     []Port    `json:"outputs,omitempty"`
	Behavior    string    `json:"behavior,omitempty"`
	Examples    []Example `json:"examples,omitempty"`
	Constraints []string  `json:"constraints,omitempty"`
}

// Node is a typed unit of the specification graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NewNode creates a node of the given type with a fresh ID and the editor's
// default placeholder name ("New Trigger", "New Process", ...).
func NewNode(t NodeType) *Node {
	return &Node{
		ID:   uuid.New().String(),
		Type: t,
		Data: NodeData{
			Name:   DefaultNodeName(t),
			Intent: "",
		},
	}
}

// DefaultNodeName returns the placeholder name the editor assigns to a new
// node of the given type. A node still carrying this name counts as
// uncustomized for scoring.
func DefaultNodeName(t NodeType) string {
	switch t {
	case NodeTrigger:
		return "New Trigger"
	case NodeProcess:
		return "New Process"
	case NodeIntegration:
		return "New Integration"
	case NodeOutput:
		return "New Output"
	default:
		return "New Node"
	}
}

// HasCustomName reports whether the node's name has been changed from the
// editor's "New ..." placeholder.
func (n *Node) HasCustomName() bool {
	return n.Data.Name != "" && n.Data.Name != DefaultNodeName(n.Type)
}

// Edge is a directed data-flow link between two nodes. SourceHandle and
// TargetHandle optionally name the specific ports being connected.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// SystemContext holds the six global, cross-node concern fields.
type SystemContext struct {
	Environment    string `json:"environment,omitempty"`
	Constraints    string `json:"constraints,omitempty"`
	Infrastructure string `json:"infrastructure,omitempty"`
	Dependencies   string `json:"dependencies,omitempty"`
	Security       string `json:"security,omitempty"`
	NonFunctional  string `json:"nonFunctional,omitempty"`
}

// Fields returns the context fields in a fixed order, paired with their names.
func (c SystemContext) Fields() []ContextField {
	return []ContextField{
		{Name: "environment", Value: c.Environment},
		{Name: "constraints", Value: c.Constraints},
		{Name: "infrastructure", Value: c.Infrastructure},
		{Name: "dependencies", Value: c.Dependencies},
		{Name: "security", Value: c.Security},
		{Name: "nonFunctional", Value: c.NonFunctional},
	}
}

// ContextField pairs a system context field name with its value.
type ContextField struct {
	Name  string
	Value string
}

// Filled reports whether the field holds more than placeholder text.
func (f ContextField) Filled() bool {
	return len(f.Value) > contextFilledThreshold
}

// CountFilled returns how many of the six context fields hold real content.
func (c SystemContext) CountFilled() int {
	count := 0
	for _, f := range c.Fields() {
		if f.Filled() {
			count++
		}
	}
	return count
}

// Graph is the aggregate specification: global system context plus the node
// graph. It is owned by a single editing session and treated as an immutable
// snapshot for the duration of one scoring or generation call.
type Graph struct {
	Context SystemContext `json:"context"`
	Nodes   []*Node       `json:"nodes"`
	Edges   []Edge        `json:"edges"`
}

// NodeByID returns the node with the given ID, or nil if it does not exist.
func (g *Graph) NodeByID(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// HasNodeOfType reports whether any node of the given type exists.
func (g *Graph) HasNodeOfType(t NodeType) bool {
	for _, n := range g.Nodes {
		if n.Type == t {
			return true
		}
	}
	return false
}

// IsConnected reports whether the node participates in at least one edge,
// as source or as target.
func (g *Graph) IsConnected(nodeID string) bool {
	for _, e := range g.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			return true
		}
	}
	return false
}

// NeighborDirection labels how a neighbor relates to a node.
type NeighborDirection string

const (
	// DirectionOutputsTo means the node feeds data into the neighbor.
	DirectionOutputsTo NeighborDirection = "outputs to"

	// DirectionReceivesFrom means the neighbor feeds data into the node.
	DirectionReceivesFrom NeighborDirection = "receives from"
)

// Neighbor is a directly connected node with the direction of the connection
// relative to the node being described.
type Neighbor struct {
	Node      *Node
	Direction NeighborDirection
}

// Neighbors returns all nodes directly connected to nodeID, with direction
// labels relative to that node. Edges referencing missing nodes are skipped.
func (g *Graph) Neighbors(nodeID string) []Neighbor {
	var neighbors []Neighbor
	for _, e := range g.Edges {
		switch nodeID {
		case e.Source:
			if n := g.NodeByID(e.Target); n != nil {
				neighbors = append(neighbors, Neighbor{Node: n, Direction: DirectionOutputsTo})
			}
		case e.Target:
			if n := g.NodeByID(e.Source); n != nil {
				neighbors = append(neighbors, Neighbor{Node: n, Direction: DirectionReceivesFrom})
			}
		}
	}
	return neighbors
}

// Validate checks referential integrity: node IDs are unique and every edge
// endpoint names an existing node.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %q has no ID", n.Data.Name)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node ID %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("edge %s references unknown source node %s", e.ID, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("edge %s references unknown target node %s", e.ID, e.Target)
		}
	}
	return nil
}
