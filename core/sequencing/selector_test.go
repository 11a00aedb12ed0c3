package sequencing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodseq/core/model"
)

// fixed returns a canned result under its own name.
type fixed struct {
	name    string
	penalty int
	err     error
}

func (f fixed) Name() string { return f.name }

func (f fixed) Solve(_ context.Context, in model.Instance, _ model.Objective) (model.ScheduleResult, error) {
	if f.err != nil {
		return model.ScheduleResult{}, f.err
	}
	return model.ScheduleResult{Strategy: f.name, TotalPenalty: f.penalty, EndingBacklog: make([]int, in.Products())}, nil
}

func TestSelector_LowestScoreWins(t *testing.T) {
	sel := NewSelector(fixed{name: "a", penalty: 30}, fixed{name: "b", penalty: 10}, fixed{name: "c", penalty: 20})
	res, err := sel.Solve(context.Background(), reference(1000, 3), model.ObjectiveTime)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Strategy)
	assert.Equal(t, 10.0, res.Score)
}

func TestSelector_TieGoesToFirst(t *testing.T) {
	sel := NewSelector(fixed{name: "a", penalty: 10}, fixed{name: "b", penalty: 10})
	sel.Workers = 2
	res, err := sel.Solve(context.Background(), reference(1000, 3), model.ObjectiveTime)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Strategy)
}

func TestSelector_SkipsFailures(t *testing.T) {
	sel := NewSelector(fixed{name: "broken", err: errors.New("boom")}, fixed{name: "ok", penalty: 50})
	entries, err := sel.Benchmark(context.Background(), reference(1000, 3), model.ObjectiveTime)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Usable())
	assert.ErrorContains(t, entries[0].Err, "broken")
	assert.True(t, entries[1].Usable())

	res, err := sel.Solve(context.Background(), reference(1000, 3), model.ObjectiveTime)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Strategy)
}

func TestSelector_SkipsNonFiniteScores(t *testing.T) {
	scoreSchedule = func(res model.ScheduleResult, obj model.Objective, split model.CombinedSplit) float64 {
		if res.Strategy == "nan" {
			return math.NaN()
		}
		return Score(res, obj, split)
	}
	t.Cleanup(func() { scoreSchedule = Score })

	sel := NewSelector(fixed{name: "nan", penalty: 0}, fixed{name: "ok", penalty: 70})
	res, err := sel.Solve(context.Background(), reference(1000, 3), model.ObjectiveTime)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Strategy)
}

func TestSelector_NoCandidateFallsBackToGreedy(t *testing.T) {
	in := reference(1000, 3)
	sel := NewSelector(fixed{name: "x", err: errors.New("x")}, fixed{name: "y", err: errors.New("y")})
	res, err := sel.Solve(context.Background(), in, model.ObjectiveCost)
	require.NoError(t, err)
	want, err := Greedy{}.Solve(context.Background(), in, model.ObjectiveCost)
	require.NoError(t, err)
	assert.Equal(t, want, res)
}

func TestSelector_NeverWorseThanAnyStrategy(t *testing.T) {
	in := reference(300, 3)
	sel := NewSelector(allStrategies()[:5]...)
	for _, obj := range model.Objectives() {
		entries, err := sel.Benchmark(context.Background(), in, obj)
		require.NoError(t, err)
		res, err := sel.Solve(context.Background(), in, obj)
		require.NoError(t, err)
		checkSchedule(t, in, res)
		for _, e := range entries {
			require.True(t, e.Usable(), e.Strategy)
			assert.LessOrEqual(t, res.Score, e.Score, "%s/%s", obj, e.Strategy)
		}
	}
}

func TestSelector_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSelector(Greedy{}).Solve(ctx, reference(1000, 3), model.ObjectiveTime)
	assert.ErrorIs(t, err, context.Canceled)
}
