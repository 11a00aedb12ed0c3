package mqtt

import (
	"context"

	"github.com/kilianp07/prodseq/core/events"
	coremon "github.com/kilianp07/prodseq/core/monitoring"
	coremqtt "github.com/kilianp07/prodseq/core/mqtt"
	"github.com/kilianp07/prodseq/infra/logger"
)

// ForwardSummaries publishes every PlanEvent received on sub until ctx is
// done or sub is closed. The returned channel closes when forwarding stops.
func ForwardSummaries(ctx context.Context, sub <-chan events.PlanEvent, pub coremqtt.Publisher) <-chan struct{} {
	done := make(chan struct{})
	log := logger.New("mqtt_forwarder")
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := pub.PublishSummary(ctx, ev); err != nil {
					log.Errorf("publish summary %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}

// New returns a Paho publisher, or NopPublisher when no broker is set.
func New(cfg Config, mon coremon.Monitor) (coremqtt.Publisher, error) {
	if cfg.Broker == "" {
		return coremqtt.NopPublisher{}, nil
	}
	return NewPahoPublisher(cfg, mon)
}
