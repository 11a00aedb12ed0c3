package sequencing

import (
	"context"
	"time"

	"github.com/kilianp07/prodseq/core/model"
)

// Strategy names accepted in configuration.
const (
	NameAuto      = "auto"
	NameGreedy    = "greedy"
	NameLeveling  = "leveling"
	NameLookahead = "lookahead"
	NameSearch    = "search"
	NameExact     = "exact"
)

// Strategy produces a schedule for one line under one objective.
// Implementations must not mutate the instance and must be safe for
// concurrent use.
type Strategy interface {
	Name() string
	Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error)
}

// LookaheadDiscount scales tomorrow's cheapest changeover in the look-ahead
// ranking.
const LookaheadDiscount = 0.5

// Greedy is the deterministic one-pass constructor and the fallback of every
// other strategy.
type Greedy struct{}

// Name implements Strategy.
func (Greedy) Name() string { return NameGreedy }

// Solve implements Strategy.
func (Greedy) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return model.ScheduleResult{}, err
	}
	start := time.Now()
	res := greedy(in, obj)
	observe(NameGreedy, obj, start)
	return res, nil
}

func greedy(in model.Instance, obj model.Objective) model.ScheduleResult {
	c := constructor{in: in, rank: newRanker(in, obj, 0)}
	res := c.run(NameGreedy, obj, in.Demand)
	res.Score = Score(res, obj, in.Split)
	return res
}

// Lookahead is greedy with a discounted estimate of tomorrow's changeover.
type Lookahead struct {
	// Discount defaults to LookaheadDiscount when zero.
	Discount float64 `json:"discount"`
}

// Name implements Strategy.
func (Lookahead) Name() string { return NameLookahead }

// Solve implements Strategy.
func (l Lookahead) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return model.ScheduleResult{}, err
	}
	start := time.Now()
	disc := l.Discount
	if disc == 0 {
		disc = LookaheadDiscount
	}
	c := constructor{in: in, rank: newRanker(in, obj, disc)}
	res := c.run(NameLookahead, obj, in.Demand)
	res.Score = Score(res, obj, in.Split)
	observe(NameLookahead, obj, start)
	return res, nil
}

// prepare rejects malformed input and already canceled contexts.
func prepare(ctx context.Context, in model.Instance, obj model.Objective) error {
	if !obj.Valid() {
		return &model.ConfigurationError{Field: "objective", Reason: "unknown objective " + obj.String()}
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return ctx.Err()
}
