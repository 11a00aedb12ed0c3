package sequencing

import (
	"context"
	"testing"

	"github.com/kilianp07/prodseq/core/model"
)

// Tomorrow only product 2 is demanded. Leaving product 0 for 2 is expensive,
// leaving product 1 is cheap, so look-ahead starts with product 1.
func lookaheadInstance() model.Instance {
	return model.Instance{
		Demand: [][]int{
			{10, 10, 0},
			{0, 0, 10},
		},
		Penalty: [][]int{
			{0, 5, 100},
			{5, 0, 1},
			{5, 5, 0},
		},
		Limits: model.Limits{DailyCapacity: 100, MaxBatchSize: 100, MaxBatches: 1},
		Split:  model.DefaultSplit,
	}
}

func TestLookahead_AvoidsExpensiveExit(t *testing.T) {
	in := lookaheadInstance()
	g, err := Greedy{}.Solve(context.Background(), in, model.ObjectiveTime)
	if err != nil {
		t.Fatalf("greedy: %v", err)
	}
	l, err := Lookahead{}.Solve(context.Background(), in, model.ObjectiveTime)
	if err != nil {
		t.Fatalf("lookahead: %v", err)
	}
	checkSchedule(t, in, g)
	checkSchedule(t, in, l)
	if g.Days[0].Events[0].Product != 0 {
		t.Fatalf("greedy should break the tie on index, got %v", g.Days[0].Events)
	}
	if l.Days[0].Events[0].Product != 1 {
		t.Fatalf("lookahead should start with product 1, got %v", l.Days[0].Events)
	}
}

func TestRanker_LastDayHasNoLookahead(t *testing.T) {
	in := lookaheadInstance()
	r := newRanker(in, model.ObjectiveTime, LookaheadDiscount)
	if got := r.lookahead(0, nil); got != 0 {
		t.Fatalf("lookahead on last day = %v", got)
	}
	if got := r.lookahead(0, []int{0, 0, 10}); got != 50 {
		t.Fatalf("lookahead = %v, want 50", got)
	}
}

func TestRanker_MandatoryFirst(t *testing.T) {
	in := lookaheadInstance()
	r := newRanker(in, model.ObjectiveTime, 0)
	pool := []need{
		{product: 0, desirable: 50},
		{product: 2, mandatory: 1},
	}
	if got := r.pick(pool, 0, 100, nil); got != 1 {
		t.Fatalf("picked %d, want the mandatory candidate", got)
	}
}

func TestRanker_LostSalesPrefersDensity(t *testing.T) {
	in := lookaheadInstance()
	r := newRanker(in, model.ObjectiveLostSales, 0)
	// From product 2: switching to 0 costs 5 for 10 units, staying on 2 is
	// free for 4 units. Density 1.0 beats 10/15.
	pool := []need{
		{product: 0, desirable: 10},
		{product: 2, desirable: 4},
	}
	if got := r.pick(pool, 2, 100, nil); got != 1 {
		t.Fatalf("picked %d, want the denser candidate", got)
	}
	// Equal density falls back to the larger producible amount.
	pool = []need{
		{product: 1, desirable: 4},
		{product: 2, desirable: 9},
	}
	if got := r.pick(pool, model.NoProduct, 100, nil); got != 1 {
		t.Fatalf("picked %d, want the larger batch", got)
	}
}
