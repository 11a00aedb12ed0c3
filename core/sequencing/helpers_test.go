package sequencing

import (
	"testing"

	"github.com/kilianp07/prodseq/core/model"
)

// reference builds the five product week used across tests: every product
// needs 100 units a day, switching into or out of product 0 costs 100
// capacity, switching among products 1-4 costs 10. Every switch costs 100
// money.
func reference(capacity, maxBatches int) model.Instance {
	const products, days = 5, 7
	penalty := make([][]int, products)
	cost := make([][]int, products)
	for i := range penalty {
		penalty[i] = make([]int, products)
		cost[i] = make([]int, products)
		for j := range penalty[i] {
			if i == j {
				continue
			}
			cost[i][j] = 100
			if i == 0 || j == 0 {
				penalty[i][j] = 100
			} else {
				penalty[i][j] = 10
			}
		}
	}
	return model.Instance{
		Demand:  uniform(days, products, 100),
		Penalty: penalty,
		Cost:    cost,
		Limits:  model.Limits{DailyCapacity: capacity, MaxBatchSize: 1000, MaxBatches: maxBatches},
		Split:   model.DefaultSplit,
	}
}

func uniform(days, products, v int) [][]int {
	m := make([][]int, days)
	for d := range m {
		m[d] = make([]int, products)
		for p := range m[d] {
			m[d][p] = v
		}
	}
	return m
}

// checkSchedule asserts flow balance per product and every daily limit.
func checkSchedule(t *testing.T, in model.Instance, res model.ScheduleResult) {
	t.Helper()
	lim := in.Limits
	tr := NewTransitions(in.Penalty, in.Cost)
	if len(res.Days) != in.Days() {
		t.Fatalf("%s: %d days, want %d", res.Strategy, len(res.Days), in.Days())
	}
	last := model.NoProduct
	var lostTotal int
	for _, d := range res.Days {
		if len(d.Events) > lim.MaxBatches {
			t.Fatalf("%s: day %d has %d events, limit %d", res.Strategy, d.Day, len(d.Events), lim.MaxBatches)
		}
		used := 0
		for _, e := range d.Events {
			if e.Amount > lim.MaxBatchSize || e.Amount <= 0 {
				t.Fatalf("%s: day %d event amount %d outside (0,%d]", res.Strategy, d.Day, e.Amount, lim.MaxBatchSize)
			}
			pen, _ := tr.Between(last, e.Product)
			used += pen + e.Amount
			last = e.Product
		}
		if used > lim.DailyCapacity {
			t.Fatalf("%s: day %d uses %d of %d capacity", res.Strategy, d.Day, used, lim.DailyCapacity)
		}
		for p := range d.Inventory {
			if d.Inventory[p] < 0 || d.Backlog[p] < 0 {
				t.Fatalf("%s: day %d negative stock or backlog for product %d", res.Strategy, d.Day, p)
			}
			lostTotal += d.LostSales[p]
		}
	}
	if lostTotal != res.TotalLostSales {
		t.Fatalf("%s: lost sales snapshots sum to %d, total says %d", res.Strategy, lostTotal, res.TotalLostSales)
	}

	produced := res.Produced(in.Products())
	ending := res.EndingInventory()
	for p := 0; p < in.Products(); p++ {
		demand, lost := 0, 0
		for d := range in.Demand {
			demand += in.Demand[d][p]
			lost += res.Days[d].LostSales[p]
		}
		got := produced[p] + lost + res.EndingBacklog[p] - ending[p]
		if got != demand {
			t.Fatalf("%s: product %d flow %d (produced %d lost %d backlog %d stock %d), demand %d",
				res.Strategy, p, got, produced[p], lost, res.EndingBacklog[p], ending[p], demand)
		}
	}
}
