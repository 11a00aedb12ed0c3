package planner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/prodseq/core/events"
	"github.com/kilianp07/prodseq/core/logger"
	coremetrics "github.com/kilianp07/prodseq/core/metrics"
	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/monitoring"
	"github.com/kilianp07/prodseq/core/runlog"
	"github.com/kilianp07/prodseq/core/sequencing"
	"github.com/kilianp07/prodseq/internal/eventbus"
)

// LineResult is the schedule of one line under one objective.
type LineResult struct {
	Line      string               `json:"line"`
	Objective model.Objective      `json:"objective"`
	Requested string               `json:"requested"`
	Result    model.ScheduleResult `json:"result"`
	Duration  time.Duration        `json:"duration"`
	Err       error                `json:"-"`
	// Error mirrors Err for encoded plans.
	Error string `json:"error,omitempty"`
	// ReusedFrom names the objective whose schedule was adopted because it
	// lost fewer sales than the one solved for this objective.
	ReusedFrom string `json:"reused_from,omitempty"`
}

// Fallback reports whether the requested strategy handed back the greedy
// schedule instead of its own.
func (r LineResult) Fallback() bool {
	return r.Err == nil && r.Requested != sequencing.NameAuto &&
		r.Requested != sequencing.NameGreedy && r.Result.Strategy == sequencing.NameGreedy
}

// Plan is the outcome of one planning run, ordered by line then objective.
type Plan struct {
	RunID    string        `json:"run_id"`
	Lines    int           `json:"lines"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Results  []LineResult  `json:"results"`
}

// Failed counts results that carry an error.
func (p *Plan) Failed() int {
	n := 0
	for _, r := range p.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Planner solves every line of a problem under every requested objective.
// Lines never share capacity, so each (line, objective) pair is an
// independent solve.
type Planner struct {
	strategy  sequencing.Strategy
	workers   int
	log       logger.Logger
	sink      coremetrics.MetricsSink
	store     runlog.LogStore
	monitor   monitoring.Monitor
	decisions eventbus.Publisher[events.StrategyEvent]
	summaries eventbus.Publisher[events.PlanEvent]
	newID     func() string
}

// Option configures a Planner.
type Option func(*Planner)

// WithWorkers bounds concurrent solves; zero means GOMAXPROCS.
func WithWorkers(n int) Option { return func(p *Planner) { p.workers = n } }

// WithLogger sets the planner logger.
func WithLogger(l logger.Logger) Option { return func(p *Planner) { p.log = logger.OrNop(l) } }

// WithMetricsSink records every solve on s.
func WithMetricsSink(s coremetrics.MetricsSink) Option {
	return func(p *Planner) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithRunLog appends one record per solve to s.
func WithRunLog(s runlog.LogStore) Option {
	return func(p *Planner) {
		if s != nil {
			p.store = s
		}
	}
}

// WithMonitor reports failed solves to m.
func WithMonitor(m monitoring.Monitor) Option {
	return func(p *Planner) { p.monitor = monitoring.OrNop(m) }
}

// WithStrategyEvents publishes one StrategyEvent per solve.
func WithStrategyEvents(pub eventbus.Publisher[events.StrategyEvent]) Option {
	return func(p *Planner) {
		if pub != nil {
			p.decisions = pub
		}
	}
}

// WithPlanEvents publishes a PlanEvent when a run finishes.
func WithPlanEvents(pub eventbus.Publisher[events.PlanEvent]) Option {
	return func(p *Planner) {
		if pub != nil {
			p.summaries = pub
		}
	}
}

// WithRunID overrides run identifier generation.
func WithRunID(f func() string) Option { return func(p *Planner) { p.newID = f } }

// New returns a Planner that solves with st.
func New(st sequencing.Strategy, opts ...Option) *Planner {
	p := &Planner{
		strategy:  st,
		log:       logger.Nop{},
		sink:      coremetrics.NopSink{},
		store:     runlog.NopStore{},
		monitor:   monitoring.NopMonitor{},
		decisions: eventbus.Nop[events.StrategyEvent]{},
		summaries: eventbus.Nop[events.PlanEvent]{},
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Plan validates prob and solves every line under every objective in objs
// (all objectives when empty). A malformed problem is rejected before any
// solve starts. A failed solve is reported in its LineResult and does not stop
// the others; only cancellation aborts the run.
func (p *Planner) Plan(ctx context.Context, prob model.Problem, objs []model.Objective) (*Plan, error) {
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		objs = model.Objectives()
	}
	for _, o := range objs {
		if !o.Valid() {
			return nil, &model.ConfigurationError{Field: "objective", Reason: fmt.Sprintf("unknown objective %d", int(o))}
		}
	}
	plan := &Plan{RunID: p.newID(), Lines: len(prob.Lines), Started: time.Now().UTC()}
	p.log.Infof("plan %s: %d lines x %d objectives with %s", plan.RunID, len(prob.Lines), len(objs), p.strategy.Name())

	results := make([]LineResult, len(prob.Lines)*len(objs))
	workers := p.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for li := range prob.Lines {
		in := prob.Instance(li)
		for oi, obj := range objs {
			idx := li*len(objs) + oi
			g.Go(func() error {
				start := time.Now()
				res, err := p.strategy.Solve(gctx, in, obj)
				r := LineResult{
					Line:      prob.Lines[li].Name,
					Objective: obj,
					Requested: p.strategy.Name(),
					Result:    res,
					Duration:  time.Since(start),
					Err:       err,
				}
				if err != nil {
					r.Error = err.Error()
				}
				results[idx] = r
				return nil
			})
		}
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for li := range prob.Lines {
		p.keepLostSalesFirst(plan.RunID, results[li*len(objs):(li+1)*len(objs)], prob.Split)
	}
	plan.Results = results
	plan.Duration = time.Since(plan.Started)
	p.report(ctx, plan)
	return plan, nil
}

// keepLostSalesFirst makes the lostSales result of one line lose no more
// sales than any other objective's result on that line: when another
// schedule loses fewer, it is adopted and rescored for lostSales. Ties on
// lost sales go to the lower lostSales score, then to objective order.
func (p *Planner) keepLostSalesFirst(runID string, line []LineResult, split model.CombinedSplit) {
	target := -1
	for i, r := range line {
		if r.Objective == model.ObjectiveLostSales && r.Err == nil {
			target = i
		}
	}
	if target < 0 {
		return
	}
	best := line[target].Result
	bestScore := sequencing.Score(best, model.ObjectiveLostSales, split)
	from := -1
	for i, r := range line {
		if i == target || r.Err != nil {
			continue
		}
		score := sequencing.Score(r.Result, model.ObjectiveLostSales, split)
		if r.Result.TotalLostSales < best.TotalLostSales ||
			(r.Result.TotalLostSales == best.TotalLostSales && score < bestScore) {
			best, bestScore, from = r.Result, score, i
		}
	}
	if from < 0 {
		return
	}
	own := line[target].Result.TotalLostSales
	res := best
	res.Objective = model.ObjectiveLostSales
	res.Score = bestScore
	line[target].Result = res
	line[target].ReusedFrom = line[from].Objective.String()
	p.log.Infof("plan %s: line %s lostSales reuses the %s schedule (%d lost instead of %d)",
		runID, line[target].Line, line[from].Objective, res.TotalLostSales, own)
}

// report forwards a finished plan to the run log, metrics, monitor and
// event buses. Failures there are logged, never returned.
func (p *Planner) report(ctx context.Context, plan *Plan) {
	recs := make([]coremetrics.SolveRecord, 0, len(plan.Results))
	outcomes := make([]events.Outcome, 0, len(plan.Results))
	for _, r := range plan.Results {
		ev := events.StrategyEvent{
			RunID:     plan.RunID,
			Line:      r.Line,
			Objective: r.Objective,
			Requested: r.Requested,
			Used:      r.Result.Strategy,
			Action:    events.ActionSelected,
		}
		rec := runlog.NewRecord(plan.RunID, r.Line, r.Requested, r.Result, r.Duration)
		switch {
		case r.Err != nil:
			ev.Action, ev.Err = events.ActionFailed, r.Err
			rec.Objective, rec.Error = r.Objective, r.Err.Error()
			p.log.Errorf("plan %s: line %s %s: %v", plan.RunID, r.Line, r.Objective, r.Err)
			p.monitor.CaptureException(r.Err, monitoring.SolveTags(plan.RunID, r.Line, r.Objective.String(), r.Requested))
		case r.Fallback():
			ev.Action = events.ActionFallback
			p.log.Warnf("plan %s: line %s %s: %s fell back to greedy", plan.RunID, r.Line, r.Objective, r.Requested)
		}
		p.decisions.Publish(ev)
		if err := p.store.Append(ctx, rec); err != nil {
			p.log.Errorf("run log append: %v", err)
		}
		if r.Err != nil {
			continue
		}
		recs = append(recs, coremetrics.SolveRecord{
			RunID:          plan.RunID,
			Line:           r.Line,
			Objective:      r.Objective,
			Requested:      r.Requested,
			Strategy:       r.Result.Strategy,
			Score:          r.Result.Score,
			TotalPenalty:   r.Result.TotalPenalty,
			TotalCost:      r.Result.TotalCost,
			TotalLostSales: r.Result.TotalLostSales,
			EndingBacklog:  rec.EndingBacklog,
			Duration:       r.Duration,
			Stats:          r.Result.Stats,
			Time:           rec.Timestamp,
		})
		outcomes = append(outcomes, events.Outcome{
			Line:      r.Line,
			Objective: r.Objective,
			Strategy:  r.Result.Strategy,
			Score:     r.Result.Score,
			LostSales: r.Result.TotalLostSales + rec.EndingBacklog,
		})
	}
	if err := p.sink.RecordSolve(recs); err != nil {
		p.log.Errorf("metrics sink: %v", err)
	}
	failed := plan.Failed()
	if r, ok := p.sink.(coremetrics.PlanRecorder); ok {
		if err := r.RecordPlan(coremetrics.PlanSummary{
			RunID:    plan.RunID,
			Lines:    plan.Lines,
			Solves:   len(plan.Results),
			Failed:   failed,
			Duration: plan.Duration,
			Time:     plan.Started,
		}); err != nil {
			p.log.Errorf("metrics sink: %v", err)
		}
	}
	p.summaries.Publish(events.PlanEvent{
		RunID:    plan.RunID,
		Lines:    plan.Lines,
		Results:  len(plan.Results),
		Failed:   failed,
		Duration: plan.Duration,
		Started:  plan.Started,
		Outcomes: outcomes,
	})
	p.log.Infof("plan %s: %d solves, %d failed in %s", plan.RunID, len(plan.Results), failed, plan.Duration)
}
