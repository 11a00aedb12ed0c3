package sequencing

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/kilianp07/prodseq/core/logger"
	"github.com/kilianp07/prodseq/core/model"
)

// Defaults for the bounded branch-and-bound.
const (
	DefaultNodeBudget   = 50000
	DefaultBranchFactor = 12
	// maxPlans caps the ordered plans enumerated per node before ranking.
	maxPlans = 4096
	// pollMask sets how often the search checks its context.
	pollMask = 4095
)

// Exact is a depth-first branch-and-bound over daily production plans. Each
// node keeps only the BranchFactor most promising plans, so the result is
// optimal within that truncated space rather than globally. The greedy
// schedule seeds the incumbent, so Exact never scores worse than Greedy.
type Exact struct {
	NodeBudget   int `json:"nodeBudget"`
	BranchFactor int `json:"branchFactor"`
	// SkipBound disables the LP lower bound used for early exit.
	SkipBound bool          `json:"skipBound"`
	Log       logger.Logger `json:"-"`
}

// Name implements Strategy.
func (Exact) Name() string { return NameExact }

// Solve implements Strategy. Budget exhaustion and cancellation are not
// errors: the best schedule found so far is returned and flagged in Stats.
func (e Exact) Solve(ctx context.Context, in model.Instance, obj model.Objective) (model.ScheduleResult, error) {
	if err := prepare(ctx, in, obj); err != nil {
		return model.ScheduleResult{}, err
	}
	start := time.Now()
	defer observe(NameExact, obj, start)
	log := logger.OrNop(e.Log)

	s := newSearch(ctx, in, obj, e.NodeBudget, e.BranchFactor)
	incumbent := greedy(in, obj)
	s.best, s.bestScore = incumbent, incumbent.Score

	if !e.SkipBound {
		lb, err := LostSalesBound(in)
		if err != nil {
			log.Warnf("exact: lower bound unavailable: %v", err)
			lb = 0
		}
		s.stats.LowerBound = lb
		if incumbent.Score <= LostSalesWeight*float64(lb) {
			log.Debugf("exact: greedy schedule meets the lower bound for %s", obj)
			incumbent.Strategy = NameExact
			incumbent.Stats = s.stats
			return incumbent, nil
		}
	}

	s.expand(0, newLineState(in.Products()), 0, 0)
	searchNodes.Observe(float64(s.stats.Nodes))

	res := s.best
	res.Stats = s.stats
	switch {
	case s.improved || !(s.stats.BudgetExhausted || s.stats.Canceled):
		res.Strategy = NameExact
	case s.stats.Canceled:
		fallbacksTotal.WithLabelValues(NameExact, "canceled").Inc()
		log.Warnf("exact: canceled after %d nodes, using greedy", s.stats.Nodes)
	default:
		fallbacksTotal.WithLabelValues(NameExact, "budget").Inc()
		log.Warnf("exact: node budget %d exhausted without improvement, using greedy", s.budget)
	}
	if s.stats.BudgetExhausted && s.improved {
		log.Infof("exact: node budget %d exhausted, returning best found", s.budget)
	}
	return res, nil
}

// search is the state of one branch-and-bound run.
type search struct {
	ctx     context.Context
	in      model.Instance
	obj     model.Objective
	tr      Transitions
	w       weights
	budget  int
	branch  int
	weekly  []int
	path    []model.DayResult
	stopped bool

	best      model.ScheduleResult
	bestScore float64
	improved  bool
	stats     model.Stats
}

func newSearch(ctx context.Context, in model.Instance, obj model.Objective, budget, branch int) *search {
	if budget <= 0 {
		budget = DefaultNodeBudget
	}
	if branch <= 0 {
		branch = DefaultBranchFactor
	}
	weekly := make([]int, in.Products())
	for _, row := range in.Demand {
		for p, v := range row {
			weekly[p] += v
		}
	}
	return &search{
		ctx:    ctx,
		in:     in,
		obj:    obj,
		tr:     NewTransitions(in.Penalty, in.Cost),
		w:      weightsFor(obj, in.Split),
		budget: budget,
		branch: branch,
		weekly: weekly,
		path:   make([]model.DayResult, 0, in.Days()),
	}
}

// child is one candidate day plan applied to a copy of the parent state.
type child struct {
	cleared  float64
	weighted float64
	state    *lineState
	day      model.DayResult
	lost     int
}

func (s *search) expand(day int, state *lineState, incurred float64, lost int) {
	if s.stopped {
		return
	}
	s.stats.Nodes++
	if s.stats.Nodes > s.budget {
		s.stats.BudgetExhausted = true
		s.stopped = true
		return
	}
	if s.stats.Nodes&pollMask == 0 && s.ctx.Err() != nil {
		s.stats.Canceled = true
		s.stopped = true
		return
	}
	bound := incurred + LostSalesWeight*float64(lost)
	if s.obj == model.ObjectiveLostSales {
		bound += float64(lost)
	}
	if bound >= s.bestScore {
		return
	}
	if day == s.in.Days() {
		s.leaf(state)
		return
	}
	for _, c := range s.children(day, state) {
		s.path = append(s.path, c.day)
		s.expand(day+1, c.state, incurred+c.weighted, lost+c.lost)
		s.path = s.path[:len(s.path)-1]
		if s.stopped {
			return
		}
	}
}

func (s *search) leaf(state *lineState) {
	s.stats.Leaves++
	var book ledger
	for _, d := range s.path {
		lostTotal := 0
		for _, v := range d.LostSales {
			lostTotal += v
		}
		book.days = append(book.days, d)
		book.penalty += d.Penalty
		book.cost += d.Cost
		book.lost += lostTotal
	}
	res := book.result(NameExact, s.obj, state)
	score := Score(res, s.obj, s.in.Split)
	if score < s.bestScore {
		res.Score = score
		s.best, s.bestScore, s.improved = res, score, true
	}
}

// children enumerates, simulates and ranks the plans for one day and keeps the
// best s.branch distinct outcomes.
func (s *search) children(day int, parent *lineState) []child {
	lim := s.in.Limits
	opened := parent.clone()
	needs := opened.openDay(s.in.Demand[day])
	net := s.netNeeds(day, opened, needs)

	var out []child
	seen := make(map[string]struct{})
	for _, plan := range s.plans(opened, needs, net) {
		st := opened.clone()
		nd := slices.Clone(needs)
		left := slices.Clone(net)
		rem := lim.DailyCapacity
		events := make([]model.Event, 0, len(plan))
		var cleared, weighted float64
		var dayPenalty, dayCost int
		for _, p := range plan {
			pen, cost := s.tr.Between(st.last, p)
			if rem-pen < 1 {
				continue
			}
			amount := min(left[p], rem-pen, lim.MaxBatchSize)
			if amount <= 0 {
				continue
			}
			cleared += s.clearedValue(day, nd[p], st.inventory[p], amount)
			rem -= pen + amount
			dayPenalty += pen
			dayCost += cost
			weighted += s.w.of(pen, cost)
			st.produce(&nd[p], amount)
			left[p] -= amount
			events = append(events, model.Event{Product: p, Amount: amount})
		}
		key := signature(events)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		lostBy, lostTotal := st.closeDay(nd)
		out = append(out, child{
			cleared:  cleared,
			weighted: weighted,
			state:    st,
			lost:     lostTotal,
			day: model.DayResult{
				Day:       day,
				Events:    events,
				Inventory: slices.Clone(st.inventory),
				LostSales: lostBy,
				Backlog:   slices.Clone(st.backlog),
				Penalty:   dayPenalty,
				Cost:      dayCost,
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].cleared != out[j].cleared {
			return out[i].cleared > out[j].cleared
		}
		return out[i].weighted < out[j].weighted
	})
	if len(out) > s.branch {
		out = out[:s.branch]
	}
	return out
}

// netNeeds is what each product still needs over the coming cyclic week:
// today's need plus the next D-1 days of demand, net of stock on hand.
func (s *search) netNeeds(day int, st *lineState, needs []need) []int {
	days := s.in.Days()
	out := make([]int, len(needs))
	for p, n := range needs {
		v := n.total() - st.inventory[p]
		for k := 1; k < days; k++ {
			v += s.in.Demand[(day+k)%days][p]
		}
		out[p] = max(0, v)
	}
	return out
}

// clearedValue weighs the demand an amount would satisfy: due units count
// fully, future day k counts (D-k)/D after existing stock is used up.
func (s *search) clearedValue(day int, n need, stock, amount int) float64 {
	days := s.in.Days()
	due := min(amount, n.total())
	v := float64(due)
	amount -= due
	for k := 1; k < days && amount > 0; k++ {
		f := s.in.Demand[(day+k)%days][n.product]
		covered := min(stock, f)
		stock -= covered
		f -= covered
		take := min(amount, f)
		amount -= take
		v += float64(take) * float64(days-k) / float64(days)
	}
	return v
}

// plans lists every ordered selection of up to MaxBatches distinct products
// drawn from the products with backlog or demand this week, in
// lexicographic depth-first order. When that set would yield more than
// maxPlans sequences it is narrowed to the products with the largest net
// need.
func (s *search) plans(st *lineState, needs []need, net []int) [][]int {
	var pool []int
	for p := range needs {
		if st.backlog[p] > 0 || s.weekly[p] > 0 {
			pool = append(pool, p)
		}
	}
	depth := min(s.in.Limits.MaxBatches, len(pool))
	for len(pool) > depth && countPlans(len(pool), depth) > maxPlans {
		worst := 0
		for i, p := range pool {
			if net[p] < net[pool[worst]] || (net[p] == net[pool[worst]] && p > pool[worst]) {
				worst = i
			}
		}
		pool = append(pool[:worst], pool[worst+1:]...)
	}

	var out [][]int
	used := make([]bool, len(needs))
	cur := make([]int, 0, depth)
	var rec func()
	rec = func() {
		out = append(out, slices.Clone(cur))
		if len(cur) == depth {
			return
		}
		for _, p := range pool {
			if used[p] {
				continue
			}
			used[p] = true
			cur = append(cur, p)
			rec()
			cur = cur[:len(cur)-1]
			used[p] = false
		}
	}
	rec()
	return out
}

// countPlans is the number of ordered selections of 0..k items out of n.
func countPlans(n, k int) int {
	total, term := 1, 1
	for i := 0; i < k; i++ {
		term *= n - i
		total += term
		if total > maxPlans {
			return total
		}
	}
	return total
}

func signature(events []model.Event) string {
	b := make([]byte, 0, len(events)*8)
	for _, e := range events {
		b = strconv.AppendInt(b, int64(e.Product), 10)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(e.Amount), 10)
		b = append(b, ';')
	}
	return string(b)
}
