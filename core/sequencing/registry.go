package sequencing

import (
	"fmt"
	"maps"

	"github.com/kilianp07/prodseq/core/factory"
	"github.com/kilianp07/prodseq/core/logger"
	"github.com/kilianp07/prodseq/core/model"
)

// SelectionOrder is the order in which automatic selection runs strategies;
// earlier entries win ties.
var SelectionOrder = []string{NameGreedy, NameLeveling, NameLookahead, NameSearch, NameExact}

var registry = factory.NewRegistry[Strategy]()

func init() {
	_ = RegisterStrategy(NameGreedy, func(conf map[string]any) (Strategy, error) {
		var g Greedy
		if err := factory.Decode(conf, &g); err != nil {
			return nil, err
		}
		return g, nil
	})
	_ = RegisterStrategy(NameLeveling, func(conf map[string]any) (Strategy, error) {
		var l Leveling
		if err := factory.Decode(conf, &l); err != nil {
			return nil, err
		}
		return l, nil
	})
	_ = RegisterStrategy(NameLookahead, func(conf map[string]any) (Strategy, error) {
		var l Lookahead
		if err := factory.Decode(conf, &l); err != nil {
			return nil, err
		}
		if l.Discount < 0 {
			return nil, fmt.Errorf("discount must be non-negative, got %v", l.Discount)
		}
		return l, nil
	})
	_ = RegisterStrategy(NameSearch, func(conf map[string]any) (Strategy, error) {
		var m MultiStart
		if err := factory.Decode(conf, &m); err != nil {
			return nil, err
		}
		if m.Epsilon != nil && (*m.Epsilon < 0 || *m.Epsilon > 1) {
			return nil, fmt.Errorf("epsilon must be within [0,1], got %v", *m.Epsilon)
		}
		return m, nil
	})
	_ = RegisterStrategy(NameExact, func(conf map[string]any) (Strategy, error) {
		var e Exact
		if err := factory.Decode(conf, &e); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// RegisterStrategy adds a strategy factory identified by name.
func RegisterStrategy(name string, f factory.Factory[Strategy]) error {
	return registry.Register(name, f)
}

// Strategies lists every registered strategy name plus "auto".
func Strategies() []string {
	return append([]string{NameAuto}, registry.Names()...)
}

// NewStrategy builds the strategy named by cfg.Strategy, applying its tuning
// block. "auto" builds a Selector over SelectionOrder.
func NewStrategy(cfg Config, log logger.Logger) (Strategy, error) {
	if cfg.Strategy == NameAuto {
		sel := &Selector{Workers: cfg.Workers, Log: log}
		for _, name := range SelectionOrder {
			st, err := build(cfg, name, log)
			if err != nil {
				return nil, err
			}
			sel.Strategies = append(sel.Strategies, st)
		}
		return sel, nil
	}
	return build(cfg, cfg.Strategy, log)
}

func build(cfg Config, name string, log logger.Logger) (Strategy, error) {
	if !registry.Has(name) {
		return nil, &model.ConfigurationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", name)}
	}
	conf := maps.Clone(cfg.Tuning[name])
	st, err := registry.Create(factory.ModuleConfig{Type: name, Conf: conf})
	if err != nil {
		return nil, &model.ConfigurationError{Field: "tuning." + name, Reason: err.Error()}
	}
	switch s := st.(type) {
	case MultiStart:
		if s.Workers == 0 {
			s.Workers = cfg.Workers
		}
		s.Log = log
		st = s
	case Exact:
		s.Log = log
		st = s
	}
	return st, nil
}
