package metrics

import (
	"time"

	"github.com/kilianp07/prodseq/core/model"
)

// SolveRecord is the outcome of one (line, objective) solve.
type SolveRecord struct {
	RunID          string
	Line           string
	Objective      model.Objective
	Requested      string
	Strategy       string
	Score          float64
	TotalPenalty   int
	TotalCost      int
	TotalLostSales int
	EndingBacklog  int
	Duration       time.Duration
	Stats          model.Stats
	Time           time.Time
}

// MetricsSink records solve outcomes for observability purposes.
type MetricsSink interface {
	RecordSolve(recs []SolveRecord) error
}

// FallbackEvent records a solve that returned the greedy schedule instead of
// the requested strategy's own.
type FallbackEvent struct {
	RunID     string
	Line      string
	Objective model.Objective
	Requested string
	Reason    string
	Time      time.Time
}

// FallbackRecorder records fallback applications.
type FallbackRecorder interface {
	RecordFallback(ev FallbackEvent) error
}

// PlanSummary describes a finished planning run.
type PlanSummary struct {
	RunID    string
	Lines    int
	Solves   int
	Failed   int
	Duration time.Duration
	Time     time.Time
}

// PlanRecorder records planning run summaries.
type PlanRecorder interface {
	RecordPlan(s PlanSummary) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve([]SolveRecord) error     { return nil }
func (NopSink) RecordFallback(FallbackEvent) error { return nil }
func (NopSink) RecordPlan(PlanSummary) error       { return nil }
