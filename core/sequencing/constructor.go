package sequencing

import (
	"math/rand"

	"github.com/kilianp07/prodseq/core/model"
)

// constructor builds a schedule one day at a time by repeatedly producing the
// best ranked candidate. With epsilon > 0 each selection is replaced by a
// uniformly random candidate with that probability.
type constructor struct {
	in      model.Instance
	rank    ranker
	epsilon float64
	rng     *rand.Rand
}

// run simulates the horizon against demand, which may differ from the
// instance demand when the caller has reshaped it.
func (c constructor) run(strategy string, obj model.Objective, demand [][]int) model.ScheduleResult {
	lim := c.in.Limits
	state := newLineState(c.in.Products())
	var book ledger
	for day := range demand {
		needs := state.openDay(demand[day])
		pool := make([]need, 0, len(needs))
		for _, n := range needs {
			if n.total() > 0 {
				pool = append(pool, n)
			}
		}
		var next []int
		if day+1 < len(demand) {
			next = demand[day+1]
		}
		rem := lim.DailyCapacity
		events := make([]model.Event, 0, lim.MaxBatches)
		var dayPenalty, dayCost int
		for len(events) < lim.MaxBatches && len(pool) > 0 && rem > 0 {
			idx := c.rank.pick(pool, state.last, rem, next)
			if c.epsilon > 0 && c.rng.Float64() < c.epsilon {
				idx = c.rng.Intn(len(pool))
			}
			cand := pool[idx]
			pool = append(pool[:idx], pool[idx+1:]...)
			pen, cost := c.rank.tr.Between(state.last, cand.product)
			if rem-pen < 1 {
				continue
			}
			rem -= pen
			dayPenalty += pen
			dayCost += cost
			amount := min(cand.total(), rem, lim.MaxBatchSize)
			rem -= amount
			state.produce(&needs[cand.product], amount)
			events = append(events, model.Event{Product: cand.product, Amount: amount})
		}
		lost, lostTotal := state.closeDay(needs)
		book.record(state, day, events, lost, lostTotal, dayPenalty, dayCost)
	}
	return book.result(strategy, obj, state)
}

// Replay re-simulates fixed per-day events against the instance demand and
// recomputes every total. Events naming unknown products or days beyond the
// horizon are ignored.
func Replay(in model.Instance, obj model.Objective, strategy string, events [][]model.Event) model.ScheduleResult {
	tr := NewTransitions(in.Penalty, in.Cost)
	state := newLineState(in.Products())
	var book ledger
	for day := range in.Demand {
		needs := state.openDay(in.Demand[day])
		kept := make([]model.Event, 0, in.Limits.MaxBatches)
		var dayPenalty, dayCost int
		if day < len(events) {
			for _, e := range events[day] {
				if e.Product < 0 || e.Product >= len(needs) || e.Amount <= 0 {
					continue
				}
				pen, cost := tr.Between(state.last, e.Product)
				dayPenalty += pen
				dayCost += cost
				state.produce(&needs[e.Product], e.Amount)
				kept = append(kept, e)
			}
		}
		lost, lostTotal := state.closeDay(needs)
		book.record(state, day, kept, lost, lostTotal, dayPenalty, dayCost)
	}
	res := book.result(strategy, obj, state)
	res.Score = Score(res, obj, in.Split)
	return res
}
