// Package app wires configuration into a ready to use planning service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/prodseq/api/runs"
	"github.com/kilianp07/prodseq/config"
	"github.com/kilianp07/prodseq/core/events"
	coremetrics "github.com/kilianp07/prodseq/core/metrics"
	"github.com/kilianp07/prodseq/core/model"
	coremon "github.com/kilianp07/prodseq/core/monitoring"
	coremqtt "github.com/kilianp07/prodseq/core/mqtt"
	"github.com/kilianp07/prodseq/core/planner"
	"github.com/kilianp07/prodseq/core/runlog"
	"github.com/kilianp07/prodseq/core/sequencing"
	"github.com/kilianp07/prodseq/infra/logger"
	"github.com/kilianp07/prodseq/infra/metrics"
	"github.com/kilianp07/prodseq/infra/monitoring"
	"github.com/kilianp07/prodseq/infra/mqtt"
	"github.com/kilianp07/prodseq/internal/eventbus"
)

// Service owns the planner and everything it reports to.
type Service struct {
	Planner    *planner.Planner
	Strategy   sequencing.Strategy
	Objectives []model.Objective

	cfg       *config.Config
	log       logger.Logger
	sink      coremetrics.MetricsSink
	store     runlog.LogStore
	monitor   coremon.Monitor
	publisher coremqtt.Publisher
	decisions *eventbus.TypedBus[events.StrategyEvent]
	summaries *eventbus.TypedBus[events.PlanEvent]

	mu       sync.Mutex
	cancel   context.CancelFunc
	workers  []<-chan struct{}
	promDone chan struct{}
	serveErr chan error
}

// New creates a Service from the configuration. Nothing runs in the
// background until Start.
func New(cfg *config.Config) (*Service, error) {
	logger.Configure(cfg.Logging)
	logg := logger.New("service")

	objs, err := cfg.ObjectiveList()
	if err != nil {
		return nil, err
	}
	st, err := sequencing.NewStrategy(cfg.Sequencing, logger.New("sequencing"))
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		coremetrics.Close(sink)
		return nil, fmt.Errorf("run log: %w", err)
	}
	pub, err := mqtt.New(cfg.MQTT, mon)
	if err != nil {
		coremetrics.Close(sink)
		_ = store.Close()
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}

	s := &Service{
		Strategy:   st,
		Objectives: objs,
		cfg:        cfg,
		log:        logg,
		sink:       sink,
		store:      store,
		monitor:    mon,
		publisher:  pub,
		decisions:  eventbus.NewTypedBuffered[events.StrategyEvent](64),
		summaries:  eventbus.NewTyped[events.PlanEvent](),
	}
	s.Planner = planner.New(st,
		planner.WithWorkers(cfg.Workers),
		planner.WithLogger(logger.New("planner")),
		planner.WithMetricsSink(sink),
		planner.WithRunLog(store),
		planner.WithMonitor(mon),
		planner.WithStrategyEvents(s.decisions),
		planner.WithPlanEvents(s.summaries),
	)
	return s, nil
}

// Start launches the fallback collector, the summary forwarder and, when
// configured, the Prometheus endpoint. They stop on Close or when ctx ends.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.workers = append(s.workers,
		metrics.StartEventCollector(ctx, s.decisions, s.sink),
		mqtt.ForwardSummaries(ctx, s.summaries.Subscribe(), s.publisher),
	)
	s.serveErr = make(chan error, 1)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		s.promDone = make(chan struct{})
		go func() {
			defer close(s.promDone)
			if err := metrics.StartPromServer(ctx, addr, s.routes()); err != nil {
				s.log.Errorf("prom server: %v", err)
				s.serveErr <- err
			}
		}()
		s.log.Infof("serving metrics on %s/metrics", addr)
	}
}

// routes lists the HTTP endpoints served next to /metrics.
func (s *Service) routes() map[string]http.Handler {
	if s.cfg.RunLog.Backend == "" {
		return nil
	}
	return map[string]http.Handler{runs.Path: runs.NewHandler(s.store, s.cfg.API.Token)}
}

// Plan solves prob and publishes every successful result.
func (s *Service) Plan(ctx context.Context, prob model.Problem) (*planner.Plan, error) {
	plan, err := s.Planner.Plan(ctx, prob, s.Objectives)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.PublishPlan(ctx, plan); err != nil {
		s.log.Errorf("publish plan %s: %v", plan.RunID, err)
	}
	return plan, nil
}

// Serve blocks until ctx ends, keeping the metrics endpoint up.
func (s *Service) Serve(ctx context.Context) error {
	s.Start(ctx)
	select {
	case <-ctx.Done():
		return nil
	case err := <-s.serveErr:
		return err
	}
}

// Benchmark runs every strategy on one line under obj, with the configured
// tuning.
func (s *Service) Benchmark(ctx context.Context, prob model.Problem, line int, obj model.Objective) ([]sequencing.Entry, error) {
	if line < 0 || line >= len(prob.Lines) {
		return nil, &model.ConfigurationError{Field: "line", Reason: fmt.Sprintf("index %d outside [0,%d)", line, len(prob.Lines))}
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	cfg := s.cfg.Sequencing
	cfg.Strategy = sequencing.NameAuto
	st, err := sequencing.NewStrategy(cfg, logger.New("benchmark"))
	if err != nil {
		return nil, err
	}
	return st.(*sequencing.Selector).Benchmark(ctx, prob.Instance(line), obj)
}

// Close stops background work and releases every connection. Events already
// published are delivered before the buses close.
func (s *Service) Close() error {
	s.mu.Lock()
	cancel, workers, promDone := s.cancel, s.workers, s.promDone
	s.mu.Unlock()

	// Buses close first so the collector and forwarder drain what is queued.
	s.decisions.Close()
	s.summaries.Close()
	for _, done := range workers {
		s.wait(done)
	}
	if cancel != nil {
		cancel()
	}
	if promDone != nil {
		s.wait(promDone)
	}
	s.publisher.Disconnect()
	coremetrics.Close(s.sink)
	s.monitor.Flush(2 * time.Second)
	return s.store.Close()
}

func (s *Service) wait(done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warnf("background worker did not stop in time")
	}
}
