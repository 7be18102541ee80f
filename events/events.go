// Package events publishes editor activity to NATS so other tools can react
// to spec changes without polling. Publishing is fire-and-forget; a nil
// publisher or a missing connection degrades to a no-op so the editor works
// fully offline.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/speccanvas/speccanvas/spec"
)

// Subjects for editor events.
const (
	SubjectScoreComputed  = "spec.score.computed"
	SubjectFieldGenerated = "spec.field.generated"
	SubjectGraphReplaced  = "spec.graph.replaced"
)

// ScoreComputedEvent is published after each completed scoring pass.
type ScoreComputedEvent struct {
	Overall     int       `json:"overall"`
	IssueCount  int       `json:"issue_count"`
	Remote      bool      `json:"remote"`
	ComputedAt  time.Time `json:"computed_at"`
	ContentHash string    `json:"content_hash"`
}

// FieldGeneratedEvent is published after a field value is generated.
type FieldGeneratedEvent struct {
	NodeID      string    `json:"node_id"`
	Field       string    `json:"field"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GraphReplacedEvent is published when the active graph is swapped wholesale.
type GraphReplacedEvent struct {
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	ContentHash string    `json:"content_hash"`
	ReplacedAt  time.Time `json:"replaced_at"`
}

// Publisher publishes editor events over a NATS connection.
type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewPublisher wraps an existing connection. A nil connection is allowed and
// turns every publish into a no-op.
func NewPublisher(conn *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// Connect dials NATS and returns a publisher. An empty URL returns a
// disconnected publisher rather than an error.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		return &Publisher{logger: logger}, nil
	}

	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	logger.Info("connected to NATS", "url", url)
	return &Publisher{conn: conn, logger: logger}, nil
}

// Close drains the connection if one exists.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("draining NATS connection", "error", err)
	}
}

// Connected reports whether events will actually leave the process.
func (p *Publisher) Connected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}

// ScoreComputed publishes a score result summary.
func (p *Publisher) ScoreComputed(s *spec.Score, contentHash string, remote bool) {
	if s == nil {
		return
	}
	p.publish(SubjectScoreComputed, ScoreComputedEvent{
		Overall:     s.Overall,
		IssueCount:  len(s.Issues),
		Remote:      remote,
		ComputedAt:  s.AnalyzedAt,
		ContentHash: contentHash,
	})
}

// FieldGenerated publishes a generation result summary.
func (p *Publisher) FieldGenerated(nodeID string, field spec.FieldKind, source string) {
	p.publish(SubjectFieldGenerated, FieldGeneratedEvent{
		NodeID:      nodeID,
		Field:       string(field),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
	})
}

// GraphReplaced publishes a graph swap notification.
func (p *Publisher) GraphReplaced(g *spec.Graph) {
	if g == nil {
		return
	}
	p.publish(SubjectGraphReplaced, GraphReplacedEvent{
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		ContentHash: g.ContentHash(),
		ReplacedAt:  time.Now().UTC(),
	})
}

func (p *Publisher) publish(subject string, event any) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshaling event", "subject", subject, "error", err)
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("publishing event", "subject", subject, "error", err)
	}
}
