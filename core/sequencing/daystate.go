package sequencing

import "github.com/kilianp07/prodseq/core/model"

// lineState is the mutable state of one line across the horizon. Every solve
// owns its own copy.
type lineState struct {
	inventory []int
	backlog   []int
	last      int
}

func newLineState(products int) *lineState {
	return &lineState{
		inventory: make([]int, products),
		backlog:   make([]int, products),
		last:      model.NoProduct,
	}
}

func (s *lineState) clone() *lineState {
	return &lineState{
		inventory: append([]int(nil), s.inventory...),
		backlog:   append([]int(nil), s.backlog...),
		last:      s.last,
	}
}

// need is the outstanding demand of one product during a day. Mandatory is
// yesterday's backlog, desirable is today's demand net of stock.
type need struct {
	product   int
	mandatory int
	desirable int
}

func (n need) total() int { return n.mandatory + n.desirable }

// openDay serves today's demand from inventory and returns one need per
// product.
func (s *lineState) openDay(demand []int) []need {
	needs := make([]need, len(demand))
	for p, d := range demand {
		use := min(s.inventory[p], d)
		s.inventory[p] -= use
		needs[p] = need{product: p, mandatory: s.backlog[p], desirable: d - use}
	}
	return needs
}

// produce retires mandatory need first, then desirable. Anything left over is
// stocked.
func (s *lineState) produce(n *need, amount int) {
	m := min(amount, n.mandatory)
	n.mandatory -= m
	amount -= m
	d := min(amount, n.desirable)
	n.desirable -= d
	amount -= d
	s.inventory[n.product] += amount
	s.last = n.product
}

// closeDay writes off unmet mandatory need as lost sales and rolls unmet
// desirable need into tomorrow's backlog.
func (s *lineState) closeDay(needs []need) (lost []int, total int) {
	lost = make([]int, len(needs))
	for _, n := range needs {
		lost[n.product] = n.mandatory
		total += n.mandatory
		s.backlog[n.product] = n.desirable
	}
	return lost, total
}

// ledger accumulates day results into a ScheduleResult.
type ledger struct {
	days    []model.DayResult
	penalty int
	cost    int
	lost    int
}

func (l *ledger) record(s *lineState, day int, events []model.Event, lost []int, lostTotal, penalty, cost int) {
	l.days = append(l.days, model.DayResult{
		Day:       day,
		Events:    events,
		Inventory: append([]int(nil), s.inventory...),
		LostSales: lost,
		Backlog:   append([]int(nil), s.backlog...),
		Penalty:   penalty,
		Cost:      cost,
	})
	l.penalty += penalty
	l.cost += cost
	l.lost += lostTotal
}

func (l *ledger) result(strategy string, obj model.Objective, s *lineState) model.ScheduleResult {
	return model.ScheduleResult{
		Strategy:       strategy,
		Objective:      obj,
		Days:           l.days,
		TotalPenalty:   l.penalty,
		TotalCost:      l.cost,
		TotalLostSales: l.lost,
		EndingBacklog:  append([]int(nil), s.backlog...),
	}
}
