package sequencing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/prodseq/core/model"
)

var (
	solveDuration  *prometheus.HistogramVec
	fallbacksTotal *prometheus.CounterVec
	skippedTotal   *prometheus.CounterVec
	searchNodes    prometheus.Histogram
	selectorWins   *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, *prometheus.CounterVec) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sequencer_solve_duration_seconds",
			Help:    "Wall time of a single strategy solve",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy", "objective"},
	)
	fb := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequencer_fallbacks_total",
			Help: "Number of solves that returned the greedy schedule instead of their own",
		},
		[]string{"strategy", "reason"},
	)
	skip := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequencer_skipped_candidates_total",
			Help: "Search iterations or strategies discarded for errors or non-finite scores",
		},
		[]string{"strategy"},
	)
	nodes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sequencer_search_nodes",
			Help:    "Nodes expanded by branch-and-bound per solve",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		},
	)
	wins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequencer_selector_wins_total",
			Help: "Strategies picked by automatic selection",
		},
		[]string{"strategy", "objective"},
	)
	return dur, fb, skip, nodes, wins
}

func init() {
	solveDuration, fallbacksTotal, skippedTotal, searchNodes, selectorWins = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers sequencer metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, fallbacksTotal, skippedTotal, searchNodes, selectorWins)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, fallbacksTotal, skippedTotal, searchNodes, selectorWins = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observe(strategy string, obj model.Objective, start time.Time) {
	solveDuration.WithLabelValues(strategy, obj.String()).Observe(time.Since(start).Seconds())
}
