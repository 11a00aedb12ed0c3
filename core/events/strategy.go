package events

import "github.com/kilianp07/prodseq/core/model"

// StrategyEvent is emitted once per (line, objective) solve. Action is
// "selected" when the configured strategy produced the schedule, "fallback"
// when the greedy schedule was returned instead, or "failed".
type StrategyEvent struct {
	RunID     string
	Line      string
	Objective model.Objective
	Requested string
	Used      string
	Action    string
	Err       error
}

// Strategy event actions.
const (
	ActionSelected = "selected"
	ActionFallback = "fallback"
	ActionFailed   = "failed"
)
