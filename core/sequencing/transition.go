package sequencing

import "github.com/kilianp07/prodseq/core/model"

// Transitions looks up changeover charges between two products.
type Transitions struct {
	penalty [][]int
	cost    [][]int
}

// NewTransitions wraps penalty and cost matrices indexed [from][to].
func NewTransitions(penalty, cost [][]int) Transitions {
	return Transitions{penalty: penalty, cost: cost}
}

// Between returns the penalty and cost of switching from one product to
// another. Staying on a product, starting from model.NoProduct and entries
// outside the matrices are free.
func (t Transitions) Between(from, to int) (penalty, cost int) {
	if from == model.NoProduct || from == to {
		return 0, 0
	}
	return lookup(t.penalty, from, to), lookup(t.cost, from, to)
}

func lookup(m [][]int, i, j int) int {
	if i < 0 || i >= len(m) || j < 0 || j >= len(m[i]) {
		return 0
	}
	return m[i][j]
}

// weights converts a changeover into a single comparable score.
type weights struct {
	penalty float64
	cost    float64
}

func weightsFor(obj model.Objective, split model.CombinedSplit) weights {
	switch obj {
	case model.ObjectiveTime:
		return weights{penalty: 1}
	case model.ObjectiveCost:
		return weights{cost: 1}
	case model.ObjectiveCombined:
		return weights{penalty: float64(split.Penalty) / 100, cost: float64(split.Cost) / 100}
	default:
		return weights{}
	}
}

func (w weights) of(penalty, cost int) float64 {
	return float64(penalty)*w.penalty + float64(cost)*w.cost
}
