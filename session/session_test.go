package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speccanvas/speccanvas/score"
	"github.com/speccanvas/speccanvas/spec"
)

func sessionTestGraph() *spec.Graph {
	return &spec.Graph{
		Nodes: []*spec.Node{
			{ID: "n1", Type: spec.NodeTrigger, Data: spec.NodeData{Name: "Webhook"}},
			{ID: "n2", Type: spec.NodeOutput, Data: spec.NodeData{Name: "Ledger"}},
		},
		Edges: []spec.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
}

func TestSessionSnapshotIsIsolated(t *testing.T) {
	s := New(sessionTestGraph())

	snap := s.Snapshot()
	snap.Nodes[0].Data.Name = "Mutated"

	assert.Equal(t, "Webhook", s.Snapshot().Nodes[0].Data.Name)
}

func TestSessionUpdateNode(t *testing.T) {
	s := New(sessionTestGraph())

	err := s.UpdateNode("n1", func(n *spec.Node) {
		n.Data.Intent = "Receive order webhooks."
	})
	require.NoError(t, err)
	assert.Equal(t, "Receive order webhooks.", s.Snapshot().Nodes[0].Data.Intent)

	err = s.UpdateNode("missing", func(n *spec.Node) {})
	assert.Error(t, err)
}

func TestSessionReplaceClearsDerivedState(t *testing.T) {
	s := New(sessionTestGraph())
	s.SetScore(&spec.Score{Overall: 50})
	s.Select("n1")

	s.Replace(&spec.Graph{Nodes: []*spec.Node{}, Edges: []spec.Edge{}})

	assert.Nil(t, s.Score())
	assert.Empty(t, s.Selected())
	assert.Empty(t, s.Snapshot().Nodes)
}

func TestSessionNilGraphStartsEmpty(t *testing.T) {
	s := New(nil)
	assert.NotNil(t, s.Snapshot())
	assert.Empty(t, s.Snapshot().Nodes)
}

// countingScorer wraps the heuristic scorer and counts passes.
type countingScorer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingScorer) Analyze(_ context.Context, g *spec.Graph) *spec.Score {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return score.Score(g)
}

func (c *countingScorer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTriggerFiresAfterSettle(t *testing.T) {
	s := New(sessionTestGraph())
	scorer := &countingScorer{}
	trigger := NewTrigger(s, scorer, WithSettle(20*time.Millisecond))
	defer trigger.Close()

	trigger.NotifyChange()

	waitFor(t, func() bool { return s.Score() != nil })
	assert.Equal(t, 1, scorer.count())
}

func TestTriggerCoalescesRapidEdits(t *testing.T) {
	s := New(sessionTestGraph())
	scorer := &countingScorer{}
	trigger := NewTrigger(s, scorer, WithSettle(50*time.Millisecond))
	defer trigger.Close()

	// Each edit changes content and restarts the settle timer.
	for i := 0; i < 5; i++ {
		_ = s.UpdateNode("n1", func(n *spec.Node) {
			n.Data.Intent += "x"
		})
		trigger.NotifyChange()
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool { return s.Score() != nil })
	assert.Equal(t, 1, scorer.count(), "a rapid edit burst produces one pass")
}

func TestTriggerIgnoresUnchangedContent(t *testing.T) {
	s := New(sessionTestGraph())
	scorer := &countingScorer{}
	trigger := NewTrigger(s, scorer, WithSettle(10*time.Millisecond))
	defer trigger.Close()

	trigger.Refresh(context.Background())
	require.Equal(t, 1, scorer.count())

	// Position-only moves do not change the content hash.
	_ = s.UpdateNode("n1", func(n *spec.Node) {
		n.Position = spec.Position{X: 500, Y: 500}
	})
	trigger.NotifyChange()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, scorer.count(), "no pass may fire for a position-only change")
}

func TestTriggerRefreshBypassesDebounce(t *testing.T) {
	s := New(sessionTestGraph())
	scorer := &countingScorer{}
	trigger := NewTrigger(s, scorer, WithSettle(10*time.Second))
	defer trigger.Close()

	result := trigger.Refresh(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 1, scorer.count())
	assert.Same(t, result, s.Score())

	// The explicit pass also works with unchanged content.
	trigger.Refresh(context.Background())
	assert.Equal(t, 2, scorer.count())
}

func TestTriggerOnScoreCallback(t *testing.T) {
	s := New(sessionTestGraph())
	var mu sync.Mutex
	var got *spec.Score

	trigger := NewTrigger(s, &countingScorer{},
		WithSettle(10*time.Millisecond),
		WithOnScore(func(result *spec.Score) {
			mu.Lock()
			got = result
			mu.Unlock()
		}))
	defer trigger.Close()

	trigger.NotifyChange()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil
	})
}

func TestTriggerCloseStopsPendingTimer(t *testing.T) {
	s := New(sessionTestGraph())
	scorer := &countingScorer{}
	trigger := NewTrigger(s, scorer, WithSettle(20*time.Millisecond))

	trigger.NotifyChange()
	trigger.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, scorer.count())

	// Further notifications are ignored after Close.
	trigger.NotifyChange()
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, scorer.count())
}
