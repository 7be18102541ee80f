package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/speccanvas/speccanvas/analyze"
	"github.com/speccanvas/speccanvas/spec"
)

const (
	// DefaultSettle is how long edits must stop before an automatic
	// scoring pass fires.
	DefaultSettle = 2 * time.Second

	// DefaultAnalysisTimeout bounds one scoring pass, including any
	// remote model call and its retries.
	DefaultAnalysisTimeout = 2 * time.Minute
)

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithSettle overrides the debounce interval.
func WithSettle(d time.Duration) TriggerOption {
	return func(t *Trigger) {
		if d > 0 {
			t.settle = d
		}
	}
}

// WithAnalysisTimeout overrides the per-pass timeout.
func WithAnalysisTimeout(d time.Duration) TriggerOption {
	return func(t *Trigger) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithOnScore registers a callback invoked after each completed pass, on
// the pass goroutine. Used to fan results out to events and metrics.
func WithOnScore(fn func(*spec.Score)) TriggerOption {
	return func(t *Trigger) { t.onScore = fn }
}

// WithTriggerLogger sets the logger used by the trigger.
func WithTriggerLogger(logger *slog.Logger) TriggerOption {
	return func(t *Trigger) { t.logger = logger }
}

// Trigger debounces automatic scoring: edits restart a settle timer, and a
// pass only fires once the graph has been quiet for the settle interval AND
// its content actually changed since the last completed pass. Position-only
// moves never schedule a pass because they do not change the content hash.
type Trigger struct {
	session *Session
	scorer  analyze.Scorer
	settle  time.Duration
	timeout time.Duration
	onScore func(*spec.Score)
	logger  *slog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	scoredHash string
	closed     bool
}

// NewTrigger wires a trigger to a session and a scorer.
func NewTrigger(s *Session, scorer analyze.Scorer, opts ...TriggerOption) *Trigger {
	t := &Trigger{
		session: s,
		scorer:  scorer,
		settle:  DefaultSettle,
		timeout: DefaultAnalysisTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NotifyChange records that the graph may have changed. If the content hash
// differs from the last scored state, the settle timer is (re)armed; if it
// does not, any pending timer is left alone and nothing is scheduled.
func (t *Trigger) NotifyChange() {
	hash := t.session.ContentHash()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if hash == t.scoredHash {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.settle, t.fire)
	t.logger.Debug("analysis scheduled", "settle", t.settle)
}

// Refresh runs a scoring pass immediately, bypassing the debounce and the
// changed-content check. The explicit request always wins.
func (t *Trigger) Refresh(ctx context.Context) *spec.Score {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	return t.run(ctx)
}

// Close stops any pending timer. Passes already in flight finish.
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Trigger) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	t.run(ctx)
}

func (t *Trigger) run(ctx context.Context) *spec.Score {
	g := t.session.Snapshot()
	hash := g.ContentHash()

	t.session.SetAnalyzing(true)
	started := time.Now()
	score := t.scorer.Analyze(ctx, g)
	t.session.SetAnalyzing(false)

	// The most recently completed pass wins, even if the graph moved on
	// while it ran. The next edit reschedules against the new hash.
	t.session.SetScore(score)

	t.mu.Lock()
	t.scoredHash = hash
	t.mu.Unlock()

	t.logger.Info("analysis completed",
		"overall", score.Overall,
		"issues", len(score.Issues),
		"duration", time.Since(started))

	if t.onScore != nil {
		t.onScore(score)
	}
	return score
}
