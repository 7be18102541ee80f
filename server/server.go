// Package server exposes the editing session over HTTP: graph read/write,
// scoring, field generation, and export, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speccanvas/speccanvas/analyze"
	"github.com/speccanvas/speccanvas/autogen"
	"github.com/speccanvas/speccanvas/events"
	"github.com/speccanvas/speccanvas/export"
	"github.com/speccanvas/speccanvas/session"
	"github.com/speccanvas/speccanvas/spec"
)

// maxRequestBodySize limits PUT/POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// Server wires the session, scorer, and generator behind an HTTP API.
type Server struct {
	session   *session.Session
	trigger   *session.Trigger
	scorer    *analyze.RemoteScorer
	generator *autogen.Generator
	publisher *events.Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// Config collects the server's collaborators. Session, Trigger, Scorer, and
// Generator are required; Publisher and Logger may be nil.
type Config struct {
	Session   *session.Session
	Trigger   *session.Trigger
	Scorer    *analyze.RemoteScorer
	Generator *autogen.Generator
	Publisher *events.Publisher
	Metrics   *Metrics
	Logger    *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		session:   cfg.Session,
		trigger:   cfg.Trigger,
		scorer:    cfg.Scorer,
		generator: cfg.Generator,
		publisher: cfg.Publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/score", s.handleScore)
	mux.HandleFunc("/api/nodes/", s.handleNodes)
	mux.HandleFunc("/api/export/", s.handleExport)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ----------------------------------------------------------------------------
// GET/PUT /api/graph
// ----------------------------------------------------------------------------

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g := s.session.Snapshot()
		data, err := export.WriteJSON(g, s.session.Score())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)

	case http.MethodPut:
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		data, err := readAll(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		g, _, err := export.ImportJSON(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s.session.Replace(g)
		s.publisher.GraphReplaced(g)
		s.trigger.NotifyChange()
		writeJSON(w, http.StatusOK, map[string]any{
			"nodes": len(g.Nodes),
			"edges": len(g.Edges),
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ----------------------------------------------------------------------------
// POST /api/analyze
// ----------------------------------------------------------------------------

// handleAnalyze runs a scoring pass immediately, bypassing the debounce.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mode := "heuristic"
	if s.scorer.HasRemote() {
		mode = "assisted"
	}

	started := time.Now()
	score := s.trigger.Refresh(r.Context())
	s.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	s.metrics.AnalysesTotal.WithLabelValues(mode).Inc()

	writeJSON(w, http.StatusOK, score)
}

// ----------------------------------------------------------------------------
// GET /api/score
// ----------------------------------------------------------------------------

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	score := s.session.Score()
	if score == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"score":     nil,
			"analyzing": s.session.Analyzing(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"score":     score,
		"analyzing": s.session.Analyzing(),
	})
}

// ----------------------------------------------------------------------------
// POST /api/nodes/{id}/generate
// ----------------------------------------------------------------------------

type generateRequest struct {
	Field string `json:"field"`
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/nodes/")
	nodeID, action, ok := strings.Cut(rest, "/")
	if !ok || action != "generate" || nodeID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	field := spec.ParseFieldKind(req.Field)
	if field == "" {
		writeError(w, http.StatusBadRequest, "unknown field: "+req.Field)
		return
	}

	value, err := s.generator.Generate(r.Context(), s.session.Snapshot(), nodeID, field)
	if err != nil {
		if errors.Is(err, autogen.ErrNodeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.session.UpdateNode(nodeID, value.Apply); err != nil {
		// The node vanished between snapshot and apply.
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.metrics.GenerationsTotal.WithLabelValues(string(value.Source)).Inc()
	s.publisher.FieldGenerated(nodeID, field, string(value.Source))
	s.trigger.NotifyChange()

	writeJSON(w, http.StatusOK, value)
}

// ----------------------------------------------------------------------------
// GET /api/export/{format}
// ----------------------------------------------------------------------------

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/export/")
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := export.Render(format, s.session.Snapshot(), s.session.Score())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	info, _ := export.GetFormatInfo(format)
	w.Header().Set("Content-Type", info.MIMEType)
	w.Write(data)
}

// ----------------------------------------------------------------------------
// GET /healthz
// ----------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"remote": s.scorer.HasRemote(),
		"events": s.publisher.Connected(),
	})
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing useful to do.
		_ = err
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
