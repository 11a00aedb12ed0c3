// Package scenarios runs YAML regression scenarios against the planner.
//
// A scenario names a problem file, the strategies and objectives to run, and
// bounds that every resulting schedule must respect.
package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/prodseq/config"
	"github.com/kilianp07/prodseq/core/model"
)

// Expected bounds every schedule of a scenario. Nil bounds are not checked.
type Expected struct {
	MaxLostSales    *int `yaml:"max_lost_sales,omitempty"`
	MinLostSales    *int `yaml:"min_lost_sales,omitempty"`
	MaxPenalty      *int `yaml:"max_penalty,omitempty"`
	MaxCost         *int `yaml:"max_cost,omitempty"`
	MaxEventsPerDay *int `yaml:"max_events_per_day,omitempty"`
	// LostSalesDominates requires the lostSales objective to lose no more
	// than any other objective on the same line and strategy.
	LostSalesDominates bool `yaml:"lost_sales_dominates,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// ProblemFile is resolved relative to the scenario file.
	ProblemFile string                    `yaml:"problem_file"`
	Limits      *model.Limits             `yaml:"limits,omitempty"`
	Strategies  []string                  `yaml:"strategies"`
	Objectives  []string                  `yaml:"objectives,omitempty"`
	Tuning      map[string]map[string]any `yaml:"tuning,omitempty"`
	Expected    Expected                  `yaml:"expected"`

	dir string
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if sc.ProblemFile == "" {
		return nil, fmt.Errorf("scenario %s: problem_file is required", sc.Name)
	}
	if len(sc.Strategies) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one strategy is required", sc.Name)
	}
	sc.dir = filepath.Dir(path)
	return &sc, nil
}

// Problem loads the scenario problem and applies its limit override.
func (sc *Scenario) Problem() (model.Problem, error) {
	p, err := config.LoadProblem(filepath.Join(sc.dir, sc.ProblemFile))
	if err != nil {
		return p, err
	}
	if sc.Limits != nil {
		p.Limits = *sc.Limits
		p.SetDefaults()
		if err := p.Validate(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (sc *Scenario) objectives() ([]model.Objective, error) {
	return config.ParseObjectives(sc.Objectives)
}
