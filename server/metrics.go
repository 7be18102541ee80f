package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor's Prometheus instruments.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec
	AnalysisFallbacks prometheus.Counter
	AnalysisDuration  prometheus.Histogram
	GenerationsTotal  *prometheus.CounterVec
	Registry          *prometheus.Registry
}

// NewMetrics creates and registers the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speccanvas_analyses_total",
			Help: "Completed scoring passes by mode.",
		}, []string{"mode"}),
		AnalysisFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speccanvas_analysis_fallbacks_total",
			Help: "Scoring passes that fell back to the heuristic scorer.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "speccanvas_analysis_duration_seconds",
			Help:    "Wall time of scoring passes.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		GenerationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speccanvas_generations_total",
			Help: "Field generations by value source.",
		}, []string{"source"}),
		Registry: reg,
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisFallbacks,
		m.AnalysisDuration,
		m.GenerationsTotal,
	)
	return m
}
