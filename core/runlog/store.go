package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/prodseq/core/model"
)

// RunRecord captures one (line, objective) solve of a planning run.
type RunRecord struct {
	RunID          string          `json:"run_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Line           string          `json:"line"`
	Objective      model.Objective `json:"objective"`
	Requested      string          `json:"requested"`
	Strategy       string          `json:"strategy"`
	Score          float64         `json:"score"`
	TotalPenalty   int             `json:"total_penalty"`
	TotalCost      int             `json:"total_cost"`
	TotalLostSales int             `json:"total_lost_sales"`
	EndingBacklog  int             `json:"ending_backlog"`
	DurationMS     int64           `json:"duration_ms"`
	Stats          model.Stats     `json:"stats"`
	Error          string          `json:"error,omitempty"`
}

// NewRecord summarises res for the run log.
func NewRecord(runID, line, requested string, res model.ScheduleResult, took time.Duration) RunRecord {
	backlog := 0
	for _, b := range res.EndingBacklog {
		backlog += b
	}
	return RunRecord{
		RunID:          runID,
		Timestamp:      time.Now().UTC(),
		Line:           line,
		Objective:      res.Objective,
		Requested:      requested,
		Strategy:       res.Strategy,
		Score:          res.Score,
		TotalPenalty:   res.TotalPenalty,
		TotalCost:      res.TotalCost,
		TotalLostSales: res.TotalLostSales,
		EndingBacklog:  backlog,
		DurationMS:     took.Milliseconds(),
		Stats:          res.Stats,
	}
}

// Query defines filters for retrieving records. Zero fields match anything.
type Query struct {
	Start     time.Time
	End       time.Time
	RunID     string
	Line      string
	Objective string
}

func (q Query) matches(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Line != "" && r.Line != q.Line {
		return false
	}
	return q.Objective == "" || r.Objective.String() == q.Objective
}

// LogStore persists RunRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error            { return nil }
func (NopStore) Query(context.Context, Query) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                       { return nil }
