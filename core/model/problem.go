package model

import (
	"errors"
	"fmt"
)

// NoProduct marks a line that has not produced anything yet.
const NoProduct = -1

// Limits bounds what a line can do in one day.
type Limits struct {
	// DailyCapacity is shared by produced units and changeover penalty.
	DailyCapacity int `json:"dailyCapacity" yaml:"dailyCapacity"`
	// MaxBatchSize caps the amount of a single production event.
	MaxBatchSize int `json:"maxBatchSize" yaml:"maxBatchSize"`
	// MaxBatches caps the number of production events per day.
	MaxBatches int `json:"maxBatches" yaml:"maxBatches"`
}

// DefaultLimits matches a single shift line with three changeovers.
var DefaultLimits = Limits{DailyCapacity: 1000, MaxBatchSize: 1000, MaxBatches: 3}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	if l.DailyCapacity <= 0 {
		return configErr("dailyCapacity", "must be positive, got %d", l.DailyCapacity)
	}
	if l.MaxBatchSize <= 0 {
		return configErr("maxBatchSize", "must be positive, got %d", l.MaxBatchSize)
	}
	if l.MaxBatches <= 0 {
		return configErr("maxBatches", "must be positive, got %d", l.MaxBatches)
	}
	return nil
}

// Line is one production line and its demand matrix, indexed [day][product].
type Line struct {
	Name   string  `json:"name" yaml:"name"`
	Demand [][]int `json:"demand" yaml:"demand"`
}

// Problem is a full planning input: shared changeover matrices and limits
// plus the demand of every line.
type Problem struct {
	Products []string      `json:"products,omitempty" yaml:"products,omitempty"`
	Penalty  [][]int       `json:"penalty" yaml:"penalty"`
	Cost     [][]int       `json:"cost" yaml:"cost"`
	Limits   Limits        `json:"limits" yaml:"limits"`
	Split    CombinedSplit `json:"split" yaml:"split"`
	Lines    []Line        `json:"lines" yaml:"lines"`
}

// SetDefaults fills zero limits from DefaultLimits and a zero split with
// DefaultSplit.
func (p *Problem) SetDefaults() {
	if p.Limits.DailyCapacity == 0 {
		p.Limits.DailyCapacity = DefaultLimits.DailyCapacity
	}
	if p.Limits.MaxBatchSize == 0 {
		p.Limits.MaxBatchSize = DefaultLimits.MaxBatchSize
	}
	if p.Limits.MaxBatches == 0 {
		p.Limits.MaxBatches = DefaultLimits.MaxBatches
	}
	if p.Split == (CombinedSplit{}) {
		p.Split = DefaultSplit
	}
	for i := range p.Lines {
		if p.Lines[i].Name == "" {
			p.Lines[i].Name = fmt.Sprintf("line-%d", i+1)
		}
	}
}

// Instance returns the solver input for line i.
func (p Problem) Instance(i int) Instance {
	return Instance{
		Demand:  p.Lines[i].Demand,
		Penalty: p.Penalty,
		Cost:    p.Cost,
		Limits:  p.Limits,
		Split:   p.Split,
	}
}

// Validate rejects malformed problems before any solve starts.
func (p Problem) Validate() error {
	if len(p.Lines) == 0 {
		return configErr("lines", "at least one line is required")
	}
	products := -1
	names := make(map[string]struct{}, len(p.Lines))
	for i, l := range p.Lines {
		if l.Name != "" {
			if _, dup := names[l.Name]; dup {
				return configErr("lines", "duplicate line name %q", l.Name)
			}
			names[l.Name] = struct{}{}
		}
		if err := p.Instance(i).Validate(); err != nil {
			var ce *ConfigurationError
			if errors.As(err, &ce) {
				ce.Field = fmt.Sprintf("lines[%d].%s", i, ce.Field)
			}
			return err
		}
		n := len(l.Demand[0])
		if products >= 0 && n != products {
			return configErr("lines", "line %q has %d products, want %d", l.Name, n, products)
		}
		products = n
	}
	if len(p.Products) > 0 && len(p.Products) != products {
		return configErr("products", "%d names for %d products", len(p.Products), products)
	}
	return nil
}

// Instance is everything a solver needs for one line. Matrices are read only.
type Instance struct {
	Demand  [][]int
	Penalty [][]int
	Cost    [][]int
	Limits  Limits
	Split   CombinedSplit
}

// Days is the horizon length D.
func (in Instance) Days() int { return len(in.Demand) }

// Products is the number of product types P.
func (in Instance) Products() int {
	if len(in.Demand) == 0 {
		return 0
	}
	return len(in.Demand[0])
}

// Validate checks dimensions, signs, limits and the combined split.
func (in Instance) Validate() error {
	if len(in.Demand) == 0 {
		return configErr("demand", "at least one day is required")
	}
	p := len(in.Demand[0])
	if p == 0 {
		return configErr("demand", "at least one product is required")
	}
	for d, row := range in.Demand {
		if len(row) != p {
			return configErr("demand", "day %d has %d columns, want %d", d, len(row), p)
		}
		for j, v := range row {
			if v < 0 {
				return configErr("demand", "negative value %d at [%d][%d]", v, d, j)
			}
		}
	}
	if err := validateSquare("penalty", in.Penalty, p); err != nil {
		return err
	}
	if err := validateSquare("cost", in.Cost, p); err != nil {
		return err
	}
	if err := in.Limits.Validate(); err != nil {
		return err
	}
	return in.Split.Validate()
}

// validateSquare accepts an empty matrix, meaning free changeovers.
func validateSquare(field string, m [][]int, p int) error {
	if len(m) == 0 {
		return nil
	}
	if len(m) != p {
		return configErr(field, "%d rows, want %d", len(m), p)
	}
	for i, row := range m {
		if len(row) != p {
			return configErr(field, "row %d has %d columns, want %d", i, len(row), p)
		}
		for j, v := range row {
			if v < 0 {
				return configErr(field, "negative value %d at [%d][%d]", v, i, j)
			}
		}
	}
	return nil
}
