package events

import (
	"time"

	"github.com/kilianp07/prodseq/core/model"
)

// PlanEvent is published when every solve of a planning run has finished.
type PlanEvent struct {
	RunID    string
	Lines    int
	Results  int
	Failed   int
	Duration time.Duration
	Started  time.Time
	Outcomes []Outcome
}

// Outcome summarises one solve of a planning run.
type Outcome struct {
	Line      string          `json:"line"`
	Objective model.Objective `json:"objective"`
	Strategy  string          `json:"strategy"`
	Score     float64         `json:"score"`
	LostSales int             `json:"lost_sales"`
}
