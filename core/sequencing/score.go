package sequencing

import (
	"math"

	"github.com/kilianp07/prodseq/core/model"
)

// LostSalesWeight multiplies every unit of unserved demand in a score so that
// feasibility always dominates changeover efficiency.
const LostSalesWeight = 100000.0

// Score ranks a schedule under obj; lower is better. Backlog left at the end
// of the horizon is unserved demand and weighs like lost sales.
func Score(res model.ScheduleResult, obj model.Objective, split model.CombinedSplit) float64 {
	var metric float64
	switch obj {
	case model.ObjectiveTime:
		metric = float64(res.TotalPenalty)
	case model.ObjectiveCost:
		metric = float64(res.TotalCost)
	case model.ObjectiveCombined:
		metric = weightsFor(obj, split).of(res.TotalPenalty, res.TotalCost)
	case model.ObjectiveLostSales:
		metric = float64(res.TotalLostSales)
	default:
		return math.NaN()
	}
	unserved := res.TotalLostSales
	for _, b := range res.EndingBacklog {
		unserved += b
	}
	return metric + LostSalesWeight*float64(unserved)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
