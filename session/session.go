// Package session owns the single active editing session: the current
// graph, the selection, and the derived quality score. There is exactly one
// writer; all mutation goes through explicit operations on the Session, and
// scoring always works on a snapshot clone so a pass in flight never
// observes a half-applied edit.
package session

import (
	"fmt"
	"sync"

	"github.com/speccanvas/speccanvas/spec"
)

// Session is the explicitly owned application state for one editor session.
type Session struct {
	mu        sync.RWMutex
	graph     *spec.Graph
	score     *spec.Score
	selected  string
	analyzing bool
}

// New creates a session around the given graph. A nil graph starts empty.
func New(g *spec.Graph) *Session {
	if g == nil {
		g = &spec.Graph{Nodes: []*spec.Node{}, Edges: []spec.Edge{}}
	}
	return &Session{graph: g}
}

// Snapshot returns a deep copy of the current graph, safe to hand to a
// concurrent scoring or generation pass.
func (s *Session) Snapshot() *spec.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// ContentHash returns the hash of the current graph's scoring-relevant
// content.
func (s *Session) ContentHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.ContentHash()
}

// Replace swaps in a new graph wholesale, dropping the previous score and
// selection. Used by import and by the file watcher.
func (s *Session) Replace(g *spec.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.score = nil
	s.selected = ""
}

// UpdateNode applies a mutation to one node under the session lock.
func (s *Session) UpdateNode(nodeID string, update func(*spec.Node)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.graph.NodeByID(nodeID)
	if n == nil {
		return fmt.Errorf("node %s not found", nodeID)
	}
	update(n)
	return nil
}

// AddNode appends a node to the graph.
func (s *Session) AddNode(n *spec.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Nodes = append(s.graph.Nodes, n)
}

// AddEdge appends an edge to the graph.
func (s *Session) AddEdge(e spec.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Edges = append(s.graph.Edges, e)
}

// SetScore attaches a freshly computed score. The latest completed pass is
// authoritative; there is no staleness check.
func (s *Session) SetScore(score *spec.Score) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = score
}

// Score returns the current score, or nil if no pass has completed.
func (s *Session) Score() *spec.Score {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// Select records which node the editor has selected. Empty clears it.
func (s *Session) Select(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nodeID
}

// Selected returns the selected node ID, or empty.
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetAnalyzing flips the analyzing flag around a scoring pass so the UI can
// show pending state. Overlapping passes are visible but not serialized.
func (s *Session) SetAnalyzing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = v
}

// Analyzing reports whether a scoring pass is in flight.
func (s *Session) Analyzing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzing
}
