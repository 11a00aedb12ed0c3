// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - StrategyEvent: strategy used for one line and objective, including fallbacks
//   - PlanEvent: summary of a finished planning run
package events
