package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/prodseq/core/events"
	coremetrics "github.com/kilianp07/prodseq/core/metrics"
	"github.com/kilianp07/prodseq/internal/eventbus"
)

// StartEventCollector subscribes to the strategy event bus and records
// fallbacks on sinks that support them. It stops when the context is
// canceled or the bus is closed; the returned channel is closed on exit.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.StrategyEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.FallbackRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Action != events.ActionFallback {
					continue
				}
				reason := "fallback"
				if ev.Err != nil {
					reason = ev.Err.Error()
				}
				_ = rec.RecordFallback(coremetrics.FallbackEvent{
					RunID:     ev.RunID,
					Line:      ev.Line,
					Objective: ev.Objective,
					Requested: ev.Requested,
					Reason:    reason,
					Time:      time.Now(),
				})
			}
		}
	}()
	return done
}
