package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/speccanvas/speccanvas/spec"
)

// snapshotVersion is bumped when the snapshot layout changes incompatibly.
const snapshotVersion = 1

// Snapshot is the lossless JSON form of an editing session: the full graph
// plus the latest score, if one was computed. Re-importing a snapshot
// reproduces an operationally identical graph; the score is advisory and may
// be regenerated.
type Snapshot struct {
	Version    int         `json:"version"`
	Graph      *spec.Graph `json:"graph"`
	Score      *spec.Score `json:"score,omitempty"`
	ExportedAt time.Time   `json:"exportedAt"`
}

// snapshotSchema validates the structural shape of an imported snapshot
// before the typed decode, so malformed files fail with a pointed message
// instead of a half-populated graph.
const snapshotSchema = `{
  "type": "object",
  "required": ["version", "graph"],
  "properties": {
    "version": {"type": "integer"},
    "graph": {
      "type": "object",
      "required": ["nodes", "edges"],
      "properties": {
        "context": {"type": "object"},
        "nodes": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "type", "data"],
            "properties": {
              "id": {"type": "string"},
              "type": {"type": "string", "enum": ["trigger", "process", "integration", "output"]},
              "data": {
                "type": "object",
                "required": ["name"],
                "properties": {"name": {"type": "string"}}
              }
            }
          }
        },
        "edges": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["source", "target"],
            "properties": {
              "source": {"type": "string"},
              "target": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// WriteJSON renders the graph and optional score as an indented snapshot.
func WriteJSON(g *spec.Graph, s *spec.Score) ([]byte, error) {
	snap := Snapshot{
		Version:    snapshotVersion,
		Graph:      g,
		Score:      s,
		ExportedAt: time.Now(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// ImportJSON validates and decodes a snapshot, returning the graph and the
// embedded score (which may be nil).
func ImportJSON(data []byte) (*spec.Graph, *spec.Score, error) {
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("validate snapshot: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		return nil, nil, fmt.Errorf("snapshot does not match schema: %s", errs[0].String())
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, snapshotVersion)
	}

	if snap.Graph.Nodes == nil {
		snap.Graph.Nodes = []*spec.Node{}
	}
	if snap.Graph.Edges == nil {
		snap.Graph.Edges = []spec.Edge{}
	}

	if err := snap.Graph.Validate(); err != nil {
		return nil, nil, fmt.Errorf("imported graph is inconsistent: %w", err)
	}

	return snap.Graph, snap.Score, nil
}
