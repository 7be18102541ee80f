package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speccanvas/speccanvas/analyze"
	"github.com/speccanvas/speccanvas/autogen"
	"github.com/speccanvas/speccanvas/events"
	"github.com/speccanvas/speccanvas/export"
	"github.com/speccanvas/speccanvas/session"
	"github.com/speccanvas/speccanvas/spec"
)

func serverTestGraph() *spec.Graph {
	return &spec.Graph{
		Nodes: []*spec.Node{
			{ID: "n1", Type: spec.NodeTrigger, Data: spec.NodeData{Name: "Order Webhook"}},
			{ID: "n2", Type: spec.NodeProcess, Data: spec.NodeData{Name: "Validate Order"}},
		},
		Edges: []spec.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	}
}

// newTestServer wires a server in heuristic-only mode: no model client, no
// NATS connection.
func newTestServer(t *testing.T, g *spec.Graph) (*Server, *session.Session) {
	t.Helper()

	sess := session.New(g)
	scorer := analyze.NewRemoteScorer(nil, nil)
	trigger := session.NewTrigger(sess, scorer, session.WithSettle(10*time.Millisecond))
	t.Cleanup(trigger.Close)

	srv := New(Config{
		Session:   sess,
		Trigger:   trigger,
		Scorer:    scorer,
		Generator: autogen.NewGenerator(nil, nil),
		Publisher: events.NewPublisher(nil, nil),
	})
	return srv, sess
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetGraph(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodGet, "/api/graph", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Order Webhook")
	assert.Contains(t, rec.Body.String(), `"e1"`)
}

func TestPutGraphReplacesSession(t *testing.T) {
	srv, sess := newTestServer(t, serverTestGraph())
	sess.SetScore(&spec.Score{Overall: 55})

	replacement := &spec.Graph{
		Nodes: []*spec.Node{
			{ID: "x1", Type: spec.NodeOutput, Data: spec.NodeData{Name: "Ledger"}},
		},
		Edges: []spec.Edge{},
	}
	body, err := export.WriteJSON(replacement, nil)
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodPut, "/api/graph", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["nodes"])
	assert.Equal(t, 0, resp["edges"])

	assert.Equal(t, "x1", sess.Snapshot().Nodes[0].ID)
	assert.Nil(t, sess.Score(), "replacing the graph drops the stale score")
}

func TestPutGraphRejectsInvalidSnapshot(t *testing.T) {
	srv, sess := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodPut, "/api/graph", []byte(`{"nodes": "wrong"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, sess.Snapshot().Nodes, 2, "a rejected snapshot leaves the graph untouched")
}

func TestGraphMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())
	rec := doRequest(t, srv, http.MethodDelete, "/api/graph", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyzeReturnsScore(t *testing.T) {
	srv, sess := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodPost, "/api/analyze", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var s spec.Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Greater(t, s.Overall, 0)
	require.NotNil(t, sess.Score())
	assert.Equal(t, s.Overall, sess.Score().Overall)
}

func TestScoreBeforeAnyPass(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodGet, "/api/score", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Score     *spec.Score `json:"score"`
		Analyzing bool        `json:"analyzing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Score)
	assert.False(t, resp.Analyzing)
}

func TestScoreAfterAnalyze(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())
	doRequest(t, srv, http.MethodPost, "/api/analyze", nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/score", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Score *spec.Score `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Score)
	assert.Greater(t, resp.Score.Overall, 0)
}

func TestGenerateField(t *testing.T) {
	srv, sess := newTestServer(t, serverTestGraph())

	body := []byte(`{"field": "intent"}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/nodes/n1/generate", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var value autogen.FieldValue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
	assert.Equal(t, autogen.SourceTemplate, value.Source)
	assert.NotEmpty(t, value.Text)

	// The generated value was applied to the live graph.
	assert.Equal(t, value.Text, sess.Snapshot().Nodes[0].Data.Intent)
}

func TestGenerateFieldErrors(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())

	tests := []struct {
		name     string
		path     string
		method   string
		body     string
		wantCode int
	}{
		{
			name:     "unknown node",
			path:     "/api/nodes/missing/generate",
			method:   http.MethodPost,
			body:     `{"field": "intent"}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown field",
			path:     "/api/nodes/n1/generate",
			method:   http.MethodPost,
			body:     `{"field": "mood"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			path:     "/api/nodes/n1/generate",
			method:   http.MethodPost,
			body:     `{not json`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong action",
			path:     "/api/nodes/n1/delete",
			method:   http.MethodPost,
			body:     `{}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "wrong method",
			path:     "/api/nodes/n1/generate",
			method:   http.MethodGet,
			body:     "",
			wantCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, tt.method, tt.path, []byte(tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodGet, "/api/export/markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# System Specification"))

	rec = doRequest(t, srv, http.MethodGet, "/api/export/json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = doRequest(t, srv, http.MethodGet, "/api/export/pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["remote"])
	assert.Equal(t, false, resp["events"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, serverTestGraph())
	doRequest(t, srv, http.MethodPost, "/api/analyze", nil)

	rec := doRequest(t, srv, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `speccanvas_analyses_total{mode="heuristic"} 1`)
}
