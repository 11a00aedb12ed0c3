// Package planner runs a sequencing strategy over every line of a problem and
// every requested objective, then reports the outcome to the run log, the
// metrics sink, the error monitor and the event buses.
//
//	p := planner.New(st, planner.WithWorkers(4), planner.WithRunLog(store))
//	plan, err := p.Plan(ctx, prob, nil)
package planner
