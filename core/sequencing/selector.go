package sequencing

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/prodseq/core/logger"
	"github.com/kilianp07/prodseq/core/model"
)

// ErrNoCandidate is returned when no strategy produced a usable schedule.
var ErrNoCandidate = errors.New("no strategy produced a usable schedule")

// Entry is the outcome of one strategy in a benchmark run.
type Entry struct {
	Strategy string
	Result   model.ScheduleResult
	Score    float64
	Err      error
}

// Usable reports whether the entry can compete in selection.
func (e Entry) Usable() bool { return e.Err == nil && finite(e.Score) }

// Selector benchmarks every strategy on the same instance and keeps the
// lowest score. Ties go to the strategy listed first.
type Selector struct {
	Strategies []Strategy
	// Workers bounds parallel strategy runs; zero means GOMAXPROCS.
	Workers int
	Log     logger.Logger
}

// NewSelector returns a selector over strategies in the given order.
func NewSelector(strategies ...Strategy) *Selector {
	return &Selector{Strategies: strategies}
}

// Name implements Strategy.
func (*Selector) Name() string { return NameAuto }

// Benchmark runs every strategy and returns one entry per strategy in
// registration order.
func (s *Selector) Benchmark(ctx context.Context, in model.Instance, obj model.Objective) ([]Entry, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return nil, err
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	entries := make([]Entry, len(s.Strategies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, st := range s.Strategies {
		g.Go(func() error {
			e := Entry{Strategy: st.Name()}
			res, err := st.Solve(gctx, in, obj)
			if err != nil {
				e.Err = fmt.Errorf("%s: %w", st.Name(), err)
			} else {
				e.Result = res
				e.Score = scoreSchedule(res, obj, in.Split)
			}
			entries[i] = e
			return nil
		})
	}
	_ = g.Wait()
	return entries, nil
}

// Solve implements Strategy. Strategies that fail or score non-finite are
// skipped; the greedy schedule is returned if none is usable.
func (s *Selector) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	start := time.Now()
	entries, err := s.Benchmark(ctx, in, obj)
	if err != nil {
		return model.ScheduleResult{}, err
	}
	defer observe(NameAuto, obj, start)
	log := logger.OrNop(s.Log)

	best := -1
	for i, e := range entries {
		if !e.Usable() {
			skippedTotal.WithLabelValues(NameAuto).Inc()
			log.Warnf("auto: skipping %s: err=%v score=%v", e.Strategy, e.Err, e.Score)
			continue
		}
		if best < 0 || e.Score < entries[best].Score {
			best = i
		}
	}
	if best < 0 {
		fallbacksTotal.WithLabelValues(NameAuto, "no_candidate").Inc()
		log.Errorf("auto: %v for %s, using greedy", ErrNoCandidate, obj)
		return greedy(in, obj), nil
	}
	w := entries[best]
	selectorWins.WithLabelValues(w.Result.Strategy, obj.String()).Inc()
	log.Debugw("auto selected strategy", map[string]any{
		"objective": obj.String(),
		"strategy":  w.Result.Strategy,
		"score":     w.Score,
	})
	res := w.Result
	res.Score = w.Score
	return res, nil
}
