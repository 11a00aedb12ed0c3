package mqtt

import (
	"time"

	"github.com/kilianp07/prodseq/core/events"
	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/planner"
)

// ResultMessage is the payload published for one line and objective.
type ResultMessage struct {
	RunID          string            `json:"run_id"`
	Line           string            `json:"line"`
	Objective      model.Objective   `json:"objective"`
	Requested      string            `json:"requested"`
	Strategy       string            `json:"strategy"`
	Score          float64           `json:"score"`
	TotalPenalty   int               `json:"total_penalty"`
	TotalCost      int               `json:"total_cost"`
	TotalLostSales int               `json:"total_lost_sales"`
	EndingBacklog  []int             `json:"ending_backlog"`
	Days           []model.DayResult `json:"days"`
	Timestamp      int64             `json:"timestamp"`
}

// NewResultMessage builds the payload for r.
func NewResultMessage(runID string, r planner.LineResult) ResultMessage {
	return ResultMessage{
		RunID:          runID,
		Line:           r.Line,
		Objective:      r.Objective,
		Requested:      r.Requested,
		Strategy:       r.Result.Strategy,
		Score:          r.Result.Score,
		TotalPenalty:   r.Result.TotalPenalty,
		TotalCost:      r.Result.TotalCost,
		TotalLostSales: r.Result.TotalLostSales,
		EndingBacklog:  r.Result.EndingBacklog,
		Days:           r.Result.Days,
		Timestamp:      time.Now().UnixMilli(),
	}
}

// SummaryMessage is the payload published once per run.
type SummaryMessage struct {
	RunID      string           `json:"run_id"`
	Lines      int              `json:"lines"`
	Results    int              `json:"results"`
	Failed     int              `json:"failed"`
	DurationMS int64            `json:"duration_ms"`
	Started    time.Time        `json:"started"`
	Outcomes   []events.Outcome `json:"outcomes"`
}

// NewSummaryMessage builds the payload for ev.
func NewSummaryMessage(ev events.PlanEvent) SummaryMessage {
	return SummaryMessage{
		RunID:      ev.RunID,
		Lines:      ev.Lines,
		Results:    ev.Results,
		Failed:     ev.Failed,
		DurationMS: ev.Duration.Milliseconds(),
		Started:    ev.Started,
		Outcomes:   ev.Outcomes,
	}
}
