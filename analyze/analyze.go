// Package analyze selects between model-assisted and heuristic scoring.
// The fallback is a first-class code path: RemoteScorer holds a LocalScorer
// and returns its result whenever the external call fails for any reason,
// so callers always receive a usable score and never an error.
package analyze

import (
	"context"
	"log/slog"

	"github.com/speccanvas/speccanvas/llm"
	"github.com/speccanvas/speccanvas/model"
	"github.com/speccanvas/speccanvas/score"
	"github.com/speccanvas/speccanvas/spec"
)

// analysisMaxTokens caps the model's scoring response. Scores and issue
// lists are small; generous headroom avoids truncated JSON.
const analysisMaxTokens = 4096

// Scorer produces a quality score for a graph. Implementations never fail:
// degraded fidelity is the only visible failure mode.
type Scorer interface {
	Analyze(ctx context.Context, g *spec.Graph) *spec.Score
}

// LocalScorer scores with the deterministic heuristic only.
type LocalScorer struct{}

// Analyze computes the heuristic score. The context is accepted for
// interface symmetry; the heuristic never blocks.
func (LocalScorer) Analyze(_ context.Context, g *spec.Graph) *spec.Score {
	return score.Score(g)
}

// RemoteScorer delegates scoring to an external model, falling back to the
// local scorer when no model is configured or the call fails.
type RemoteScorer struct {
	client     llm.Completer
	local      LocalScorer
	logger     *slog.Logger
	onFallback func()
}

// ScorerOption configures a RemoteScorer.
type ScorerOption func(*RemoteScorer)

// WithFallbackHook registers a callback invoked whenever a model pass was
// attempted but the heuristic result was returned instead.
func WithFallbackHook(fn func()) ScorerOption {
	return func(r *RemoteScorer) { r.onFallback = fn }
}

// NewRemoteScorer creates a scorer that prefers the external model.
// A nil logger uses slog.Default().
func NewRemoteScorer(client llm.Completer, logger *slog.Logger, opts ...ScorerOption) *RemoteScorer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RemoteScorer{client: client, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasRemote reports whether a model-assisted pass is currently possible.
// The UI uses this to label scores as heuristic or model-derived.
func (r *RemoteScorer) HasRemote() bool {
	return r.client != nil && r.client.Available(model.CapabilityAnalysis)
}

// Analyze runs a model-assisted scoring pass. Every failure class
// (missing credential, transport error, non-JSON output, schema violation)
// degrades to the heuristic result.
func (r *RemoteScorer) Analyze(ctx context.Context, g *spec.Graph) *spec.Score {
	if !r.HasRemote() {
		return r.local.Analyze(ctx, g)
	}

	temp := 0.2 // Low temperature for consistent scoring
	resp, err := r.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityAnalysis,
		Messages: []llm.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: BuildAnalysisPrompt(g)},
		},
		Temperature: &temp,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		r.logger.Warn("Model analysis failed, using heuristic score", "error", err)
		return r.fallback(ctx, g)
	}

	s, err := decodeRemoteScore(resp.Content)
	if err != nil {
		r.logger.Warn("Model returned unusable score, using heuristic score",
			"model", resp.Model, "error", err)
		return r.fallback(ctx, g)
	}

	r.logger.Debug("Model analysis completed",
		"model", resp.Model,
		"overall", s.Overall,
		"issues", len(s.Issues))
	return s
}

func (r *RemoteScorer) fallback(ctx context.Context, g *spec.Graph) *spec.Score {
	if r.onFallback != nil {
		r.onFallback()
	}
	return r.local.Analyze(ctx, g)
}
