package model

// Event is one contiguous production run of a single product.
type Event struct {
	Product int `json:"product"`
	Amount  int `json:"amount"`
}

// DayResult records what happened on one day of the horizon. Slices are
// snapshots taken at the end of the day and indexed by product.
type DayResult struct {
	Day       int     `json:"day"`
	Events    []Event `json:"events"`
	Inventory []int   `json:"inventory"`
	LostSales []int   `json:"lostSales"`
	Backlog   []int   `json:"backlog"`
	Penalty   int     `json:"penalty"`
	Cost      int     `json:"cost"`
}

// Stats carries solver diagnostics. Fields that a strategy does not use stay
// zero.
type Stats struct {
	Nodes           int     `json:"nodes,omitempty"`
	Leaves          int     `json:"leaves,omitempty"`
	BudgetExhausted bool    `json:"budgetExhausted,omitempty"`
	Canceled        bool    `json:"canceled,omitempty"`
	LowerBound      int     `json:"lowerBound,omitempty"`
	Iterations      int     `json:"iterations,omitempty"`
	Skipped         int     `json:"skipped,omitempty"`
	BestIteration   int     `json:"bestIteration,omitempty"`
	ScoreMean       float64 `json:"scoreMean,omitempty"`
	ScoreStdDev     float64 `json:"scoreStdDev,omitempty"`
}

// ScheduleResult is a complete plan for one line under one objective.
type ScheduleResult struct {
	Strategy       string      `json:"strategy"`
	Objective      Objective   `json:"objective"`
	Days           []DayResult `json:"days"`
	TotalPenalty   int         `json:"totalPenalty"`
	TotalCost      int         `json:"totalCost"`
	TotalLostSales int         `json:"totalLostSales"`
	EndingBacklog  []int       `json:"endingBacklog"`
	Score          float64     `json:"score"`
	Stats          Stats       `json:"stats"`
}

// EndingInventory returns the stock left after the last day.
func (r ScheduleResult) EndingInventory() []int {
	if len(r.Days) == 0 {
		return nil
	}
	return r.Days[len(r.Days)-1].Inventory
}

// Produced sums event amounts per product over the horizon.
func (r ScheduleResult) Produced(products int) []int {
	out := make([]int, products)
	for _, d := range r.Days {
		for _, e := range d.Events {
			out[e.Product] += e.Amount
		}
	}
	return out
}

// Events returns the per-day event lists, suitable for replay.
func (r ScheduleResult) Events() [][]Event {
	out := make([][]Event, len(r.Days))
	for i, d := range r.Days {
		out[i] = append([]Event(nil), d.Events...)
	}
	return out
}
