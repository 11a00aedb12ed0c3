package sequencing

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/prodseq/core/logger"
	"github.com/kilianp07/prodseq/core/model"
)

// Defaults for the randomized multi-start search.
const (
	DefaultIterations = 100
	DefaultEpsilon    = 0.15
)

// scoreSchedule points to the function used to score candidate schedules. It
// can be overridden in tests to simulate non-finite scores.
var scoreSchedule = Score

// MultiStart runs many epsilon-greedy constructions and keeps the lowest
// score. Each iteration draws from its own seeded stream, so the outcome does
// not depend on Workers.
type MultiStart struct {
	Iterations int `json:"iterations"`
	// Epsilon is the chance of a random pick; nil means DefaultEpsilon and
	// zero makes every iteration a plain greedy pass.
	Epsilon *float64 `json:"epsilon"`
	// Workers bounds parallel iterations; zero means GOMAXPROCS.
	Workers int           `json:"workers"`
	Seed    int64         `json:"seed"`
	Log     logger.Logger `json:"-"`
}

// Name implements Strategy.
func (MultiStart) Name() string { return NameSearch }

// Solve implements Strategy. A canceled context stops scheduling new
// iterations; the best of those already finished is returned.
func (m MultiStart) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return model.ScheduleResult{}, err
	}
	start := time.Now()
	defer observe(NameSearch, obj, start)
	log := logger.OrNop(m.Log)

	n := m.Iterations
	if n <= 0 {
		n = DefaultIterations
	}
	eps := DefaultEpsilon
	if m.Epsilon != nil {
		eps = *m.Epsilon
	}
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rank := newRanker(in, obj, 0)
	results := make([]model.ScheduleResult, n)
	scores := make([]float64, n)
	ran := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			c := constructor{in: in, rank: rank, epsilon: eps, rng: streamRNG(m.Seed, uint64(i))}
			results[i] = c.run(NameSearch, obj, in.Demand)
			scores[i] = scoreSchedule(results[i], obj, in.Split)
			ran[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var valid []float64
	var index []int
	stats := model.Stats{Canceled: ctx.Err() != nil}
	for i := range results {
		if !ran[i] {
			continue
		}
		stats.Iterations++
		if !finite(scores[i]) {
			stats.Skipped++
			continue
		}
		valid = append(valid, scores[i])
		index = append(index, i)
	}
	if stats.Skipped > 0 {
		skippedTotal.WithLabelValues(NameSearch).Add(float64(stats.Skipped))
		log.Warnf("search: skipped %d iterations with non-finite scores", stats.Skipped)
	}
	if len(valid) == 0 {
		fallbacksTotal.WithLabelValues(NameSearch, "no_valid_iteration").Inc()
		log.Warnf("search: no valid iteration for %s, using greedy", obj)
		res := greedy(in, obj)
		stats.Iterations++
		res.Stats = stats
		return res, nil
	}

	best := floats.MinIdx(valid)
	res := results[index[best]]
	res.Score = valid[best]
	stats.BestIteration = index[best]
	stats.ScoreMean, stats.ScoreStdDev = stat.PopMeanStdDev(valid, nil)
	res.Stats = stats
	log.Debugw("search finished", map[string]any{
		"objective":  obj.String(),
		"iterations": stats.Iterations,
		"best":       stats.BestIteration,
		"score":      res.Score,
	})
	return res, nil
}
