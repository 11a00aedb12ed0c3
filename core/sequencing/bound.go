package sequencing

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/prodseq/core/model"
)

// boundSolve points to the LP routine behind LostSalesBound. It can be
// overridden in tests to simulate solver failures.
var boundSolve = lp.Simplex

// LostSalesBound returns a lower bound on the units of demand that any
// schedule leaves unserved, whether lost or still in backlog after the last
// day. It maximises served demand in a relaxation that keeps daily capacity,
// batch size and the one-day backlog window but ignores changeover penalties
// and event ordering.
//
// Variables are x[d][p] (produced) and s[d][p] (demand of day d served). The
// LP is built directly in standard form with one slack per row:
//
//	s[d][p]                             <= demand[d][p]
//	x[d][p]                             <= maxBatchSize
//	sum_p x[d][p]                       <= min(capacity, maxBatches*maxBatchSize)
//	sum_{d<=k} s[d][p] - sum_{d<=k+1} x[d][p] <= 0   (window clipped to the horizon)
func LostSalesBound(in model.Instance) (int, error) {
	days, products := in.Days(), in.Products()
	total := 0
	for _, row := range in.Demand {
		for _, v := range row {
			total += v
		}
	}
	if total == 0 {
		return 0, nil
	}

	dp := days * products
	xIdx := func(d, p int) int { return d*products + p }
	sIdx := func(d, p int) int { return dp + d*products + p }
	rows := 3*dp + days
	cols := 2*dp + rows

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	basic := make([]int, rows)
	r := 0
	addSlack := func(rhs float64) {
		a.Set(r, 2*dp+r, 1)
		b[r] = rhs
		basic[r] = 2*dp + r
		r++
	}
	for d := 0; d < days; d++ {
		for p := 0; p < products; p++ {
			a.Set(r, sIdx(d, p), 1)
			addSlack(float64(in.Demand[d][p]))
		}
	}
	for d := 0; d < days; d++ {
		for p := 0; p < products; p++ {
			a.Set(r, xIdx(d, p), 1)
			addSlack(float64(in.Limits.MaxBatchSize))
		}
	}
	dayCap := float64(min(in.Limits.DailyCapacity, in.Limits.MaxBatches*in.Limits.MaxBatchSize))
	for d := 0; d < days; d++ {
		for p := 0; p < products; p++ {
			a.Set(r, xIdx(d, p), 1)
		}
		addSlack(dayCap)
	}
	for p := 0; p < products; p++ {
		for k := 0; k < days; k++ {
			for d := 0; d <= k; d++ {
				a.Set(r, sIdx(d, p), 1)
			}
			for d := 0; d <= min(k+1, days-1); d++ {
				a.Set(r, xIdx(d, p), -1)
			}
			addSlack(0)
		}
	}

	c := make([]float64, cols)
	for i := dp; i < 2*dp; i++ {
		c[i] = -1
	}
	optF, _, err := boundSolve(c, a, b, 1e-9, basic)
	if err != nil {
		return 0, err
	}
	unserved := float64(total) + optF
	return max(0, int(math.Ceil(unserved-1e-6))), nil
}
