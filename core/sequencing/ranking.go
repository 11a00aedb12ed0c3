package sequencing

import (
	"math"

	"github.com/kilianp07/prodseq/core/model"
)

// densityTolerance treats two lost-sales densities as equal.
const densityTolerance = 1e-4

// ranker orders production candidates within a day.
type ranker struct {
	tr       Transitions
	w        weights
	density  bool
	maxBatch int
	// discount scales the look-ahead term; zero disables it.
	discount float64
}

func newRanker(in model.Instance, obj model.Objective, discount float64) ranker {
	return ranker{
		tr:       NewTransitions(in.Penalty, in.Cost),
		w:        weightsFor(obj, in.Split),
		density:  obj == model.ObjectiveLostSales,
		maxBatch: in.Limits.MaxBatchSize,
		discount: discount,
	}
}

// before reports whether candidate a ranks strictly ahead of b given the
// product last run, the capacity remaining and tomorrow's demand (nil on the
// last day).
func (r ranker) before(a, b need, last, rem int, next []int) bool {
	am, bm := a.mandatory > 0, b.mandatory > 0
	if am != bm {
		return am
	}
	pa, ca := r.tr.Between(last, a.product)
	pb, cb := r.tr.Between(last, b.product)
	if r.density {
		qa := r.producible(a, pa, rem)
		qb := r.producible(b, pb, rem)
		da, db := density(qa, pa), density(qb, pb)
		if math.Abs(da-db) > densityTolerance {
			return da > db
		}
		if qa != qb {
			return qa > qb
		}
	}
	sa := r.w.of(pa, ca) + r.lookahead(a.product, next)
	sb := r.w.of(pb, cb) + r.lookahead(b.product, next)
	if sa != sb {
		return sa < sb
	}
	return a.product < b.product
}

// producible is the amount a candidate could make after paying its
// changeover.
func (r ranker) producible(n need, penalty, rem int) int {
	return max(0, min(n.total(), rem-penalty, r.maxBatch))
}

func density(produced, penalty int) float64 {
	if produced+penalty == 0 {
		return 0
	}
	return float64(produced) / float64(produced+penalty)
}

// lookahead estimates the cheapest changeover out of p into any product
// demanded tomorrow.
func (r ranker) lookahead(p int, next []int) float64 {
	if r.discount == 0 || next == nil {
		return 0
	}
	best := math.Inf(1)
	for q, d := range next {
		if d <= 0 {
			continue
		}
		pen, cost := r.tr.Between(p, q)
		best = min(best, r.w.of(pen, cost))
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best * r.discount
}

// pick returns the index of the best candidate in pool.
func (r ranker) pick(pool []need, last, rem int, next []int) int {
	best := 0
	for i := 1; i < len(pool); i++ {
		if r.before(pool[i], pool[best], last, rem, next) {
			best = i
		}
	}
	return best
}
