package sequencing

import (
	"testing"

	"github.com/kilianp07/prodseq/core/model"
)

func TestTransitions_Between(t *testing.T) {
	tr := NewTransitions([][]int{{9, 5}, {7, 9}}, [][]int{{9, 50}, {70, 9}})
	cases := []struct {
		name             string
		from, to         int
		wantPen, wantCst int
	}{
		{"no prior product", model.NoProduct, 1, 0, 0},
		{"same product", 1, 1, 0, 0},
		{"matrix entry", 0, 1, 5, 50},
		{"reverse entry", 1, 0, 7, 70},
		{"outside matrix", 0, 4, 0, 0},
	}
	for _, c := range cases {
		pen, cost := tr.Between(c.from, c.to)
		if pen != c.wantPen || cost != c.wantCst {
			t.Errorf("%s: got (%d,%d) want (%d,%d)", c.name, pen, cost, c.wantPen, c.wantCst)
		}
	}
}

func TestWeightsFor(t *testing.T) {
	split := model.CombinedSplit{Penalty: 30, Cost: 70}
	cases := map[model.Objective]float64{
		model.ObjectiveTime:      10,
		model.ObjectiveCost:      100,
		model.ObjectiveCombined:  0.3*10 + 0.7*100,
		model.ObjectiveLostSales: 0,
	}
	for obj, want := range cases {
		if got := weightsFor(obj, split).of(10, 100); got != want {
			t.Errorf("%s: got %v want %v", obj, got, want)
		}
	}
}
