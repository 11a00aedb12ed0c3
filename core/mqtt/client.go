package mqtt

import (
	"context"

	"github.com/kilianp07/prodseq/core/events"
	"github.com/kilianp07/prodseq/core/planner"
)

// Publisher ships finished plans to downstream consumers such as line
// controllers.
type Publisher interface {
	// PublishPlan sends one message per successful line result.
	PublishPlan(ctx context.Context, plan *planner.Plan) error
	// PublishSummary sends the run summary.
	PublishSummary(ctx context.Context, ev events.PlanEvent) error
	Disconnect()
}

// NopPublisher drops everything.
type NopPublisher struct{}

func (NopPublisher) PublishPlan(context.Context, *planner.Plan) error        { return nil }
func (NopPublisher) PublishSummary(context.Context, events.PlanEvent) error { return nil }
func (NopPublisher) Disconnect()                                            {}
