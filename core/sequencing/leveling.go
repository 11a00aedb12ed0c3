package sequencing

import (
	"context"
	"time"

	"github.com/kilianp07/prodseq/core/model"
)

// Leveling smooths demand peaks, plans greedily on the smoothed matrix and
// replays the chosen events against the real demand.
type Leveling struct{}

// Name implements Strategy.
func (Leveling) Name() string { return NameLeveling }

// Solve implements Strategy.
func (Leveling) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return model.ScheduleResult{}, err
	}
	start := time.Now()
	c := constructor{in: in, rank: newRanker(in, obj, 0)}
	planned := c.run(NameLeveling, obj, LevelDemand(in.Demand))
	res := Replay(in, obj, NameLeveling, planned.Events())
	observe(NameLeveling, obj, start)
	return res, nil
}

// LevelDemand returns a copy of demand where, per product, any day above 1.2
// times the weekly average moves its excess over the average to the previous
// day and then the next day, as long as those days sit below the average.
// Totals per product are preserved.
func LevelDemand(demand [][]int) [][]int {
	out := make([][]int, len(demand))
	for d := range demand {
		out[d] = append([]int(nil), demand[d]...)
	}
	days := len(out)
	if days == 0 {
		return out
	}
	for p := range out[0] {
		total := 0
		for d := range out {
			total += out[d][p]
		}
		avg := total / days
		for d := range out {
			// m > 1.2 * total / days, kept in integers.
			if 5*days*out[d][p] <= 6*total {
				continue
			}
			excess := out[d][p] - avg
			if d > 0 && out[d-1][p] < avg {
				shift := min(excess, avg-out[d-1][p])
				out[d-1][p] += shift
				out[d][p] -= shift
				excess -= shift
			}
			if d < days-1 && excess > 0 && out[d+1][p] < avg {
				shift := min(excess, avg-out[d+1][p])
				out[d+1][p] += shift
				out[d][p] -= shift
			}
		}
	}
	return out
}
