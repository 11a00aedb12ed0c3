package scenarios

import (
	"context"
	"fmt"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/planner"
	"github.com/kilianp07/prodseq/core/sequencing"
)

// Violation is one broken expectation.
type Violation struct {
	Strategy  string
	Line      string
	Objective model.Objective
	Msg       string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s/%s: %s", v.Strategy, v.Line, v.Objective, v.Msg)
}

// Run plans the scenario once per strategy and returns every violated
// expectation. An error means the scenario itself could not run.
func Run(ctx context.Context, sc *Scenario) ([]Violation, error) {
	prob, err := sc.Problem()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	objs, err := sc.objectives()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	var out []Violation
	for _, name := range sc.Strategies {
		st, err := sequencing.NewStrategy(sequencing.Config{Strategy: name, Tuning: sc.Tuning}, nil)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		plan, err := planner.New(st, planner.WithRunID(func() string { return sc.Name })).Plan(ctx, prob, objs)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		for _, r := range plan.Results {
			out = append(out, check(sc.Expected, name, r)...)
		}
		if sc.Expected.LostSalesDominates {
			out = append(out, dominance(name, plan)...)
		}
	}
	return out, nil
}

func check(exp Expected, strategy string, r planner.LineResult) []Violation {
	var out []Violation
	fail := func(format string, args ...any) {
		out = append(out, Violation{Strategy: strategy, Line: r.Line, Objective: r.Objective, Msg: fmt.Sprintf(format, args...)})
	}
	if r.Err != nil {
		fail("solve failed: %v", r.Err)
		return out
	}
	res := r.Result
	if exp.MaxLostSales != nil && res.TotalLostSales > *exp.MaxLostSales {
		fail("lost sales %d > %d", res.TotalLostSales, *exp.MaxLostSales)
	}
	if exp.MinLostSales != nil && res.TotalLostSales < *exp.MinLostSales {
		fail("lost sales %d < %d", res.TotalLostSales, *exp.MinLostSales)
	}
	if exp.MaxPenalty != nil && res.TotalPenalty > *exp.MaxPenalty {
		fail("penalty %d > %d", res.TotalPenalty, *exp.MaxPenalty)
	}
	if exp.MaxCost != nil && res.TotalCost > *exp.MaxCost {
		fail("cost %d > %d", res.TotalCost, *exp.MaxCost)
	}
	if exp.MaxEventsPerDay != nil {
		for _, d := range res.Days {
			if len(d.Events) > *exp.MaxEventsPerDay {
				fail("day %d has %d events > %d", d.Day, len(d.Events), *exp.MaxEventsPerDay)
			}
		}
	}
	return out
}

func dominance(strategy string, plan *planner.Plan) []Violation {
	lost := map[string]int{}
	for _, r := range plan.Results {
		if r.Err == nil && r.Objective == model.ObjectiveLostSales {
			lost[r.Line] = r.Result.TotalLostSales
		}
	}
	var out []Violation
	for _, r := range plan.Results {
		ls, ok := lost[r.Line]
		if !ok || r.Err != nil || r.Objective == model.ObjectiveLostSales {
			continue
		}
		if ls > r.Result.TotalLostSales {
			out = append(out, Violation{
				Strategy:  strategy,
				Line:      r.Line,
				Objective: model.ObjectiveLostSales,
				Msg:       fmt.Sprintf("loses %d, more than %s with %d", ls, r.Objective, r.Result.TotalLostSales),
			})
		}
	}
	return out
}
