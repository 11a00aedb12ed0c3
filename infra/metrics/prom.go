package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/prodseq/core/metrics"
)

// PromSink records planning outcomes in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	score     *prometheus.GaugeVec
	lost      *prometheus.GaugeVec
	penalty   *prometheus.GaugeVec
	fallbacks *prometheus.CounterVec
	runs      prometheus.Histogram
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_solves_total",
			Help: "Solves completed per line, objective and strategy used",
		}, []string{"line", "objective", "strategy"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_score",
			Help: "Score of the latest schedule per line and objective",
		}, []string{"line", "objective"}),
		lost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_lost_sales_units",
			Help: "Lost sales plus ending backlog of the latest schedule",
		}, []string{"line", "objective"}),
		penalty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_changeover_penalty_units",
			Help: "Changeover penalty of the latest schedule",
		}, []string{"line", "objective"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_fallbacks_total",
			Help: "Solves that returned the greedy schedule instead of the requested strategy",
		}, []string{"requested", "reason"}),
		runs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_run_duration_seconds",
			Help:    "Wall time of a full planning run",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	if s.score, err = register(reg, s.score); err != nil {
		return nil, err
	}
	if s.lost, err = register(reg, s.lost); err != nil {
		return nil, err
	}
	if s.penalty, err = register(reg, s.penalty); err != nil {
		return nil, err
	}
	if s.fallbacks, err = register(reg, s.fallbacks); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates the per line gauges and the solve counter.
func (s *PromSink) RecordSolve(recs []coremetrics.SolveRecord) error {
	for _, r := range recs {
		obj := r.Objective.String()
		s.solves.WithLabelValues(r.Line, obj, r.Strategy).Inc()
		s.score.WithLabelValues(r.Line, obj).Set(r.Score)
		s.lost.WithLabelValues(r.Line, obj).Set(float64(r.TotalLostSales + r.EndingBacklog))
		s.penalty.WithLabelValues(r.Line, obj).Set(float64(r.TotalPenalty))
	}
	return nil
}

// RecordFallback counts fallback applications.
func (s *PromSink) RecordFallback(ev coremetrics.FallbackEvent) error {
	s.fallbacks.WithLabelValues(ev.Requested, ev.Reason).Inc()
	return nil
}

// RecordPlan observes the run duration.
func (s *PromSink) RecordPlan(sum coremetrics.PlanSummary) error {
	s.runs.Observe(sum.Duration.Seconds())
	return nil
}
