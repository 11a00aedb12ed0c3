// Package sequencing builds daily production sequences for one line.
//
// A Strategy turns a model.Instance (demand, changeover matrices and daily
// limits) into a model.ScheduleResult under an objective. Greedy is the
// deterministic constructor every other strategy falls back to; Lookahead,
// Leveling, MultiStart (search) and Exact refine it, and Selector runs them
// all and keeps the lowest Score. Strategies are built from configuration
// through NewStrategy:
//
//	st, err := sequencing.NewStrategy(sequencing.Config{Strategy: "exact"}, log)
//	res, err := st.Solve(ctx, problem.Instance(0), model.ObjectiveTime)
package sequencing
