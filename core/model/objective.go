package model

import (
	"fmt"
	"strings"
)

// Objective selects the quantity a schedule minimises.
type Objective int

const (
	ObjectiveTime Objective = iota
	ObjectiveCost
	ObjectiveCombined
	ObjectiveLostSales
)

// String returns the wire name of the objective.
func (o Objective) String() string {
	switch o {
	case ObjectiveTime:
		return "time"
	case ObjectiveCost:
		return "cost"
	case ObjectiveCombined:
		return "combined"
	case ObjectiveLostSales:
		return "lostSales"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the known objectives.
func (o Objective) Valid() bool {
	return o >= ObjectiveTime && o <= ObjectiveLostSales
}

// MarshalText implements encoding.TextMarshaler.
func (o Objective) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid objective %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Objective) UnmarshalText(b []byte) error {
	v, err := ParseObjective(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseObjective maps a name such as "lostSales" to its Objective. Matching
// ignores case and accepts "lost_sales".
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time":
		return ObjectiveTime, nil
	case "cost":
		return ObjectiveCost, nil
	case "combined":
		return ObjectiveCombined, nil
	case "lostsales", "lost_sales":
		return ObjectiveLostSales, nil
	}
	return 0, &ConfigurationError{Field: "objective", Reason: fmt.Sprintf("unknown objective %q", s)}
}

// Objectives lists every objective in display order.
func Objectives() []Objective {
	return []Objective{ObjectiveTime, ObjectiveCost, ObjectiveCombined, ObjectiveLostSales}
}

// CombinedSplit weights penalty and cost for the combined objective. The two
// parts are percentages and must sum to 100.
type CombinedSplit struct {
	Penalty int `json:"penalty" yaml:"penalty"`
	Cost    int `json:"cost" yaml:"cost"`
}

// DefaultSplit is the even 50/50 split.
var DefaultSplit = CombinedSplit{Penalty: 50, Cost: 50}

// Validate checks the split is a pair of non-negative percentages.
func (s CombinedSplit) Validate() error {
	if s.Penalty < 0 || s.Cost < 0 {
		return &ConfigurationError{Field: "split", Reason: "weights must be non-negative"}
	}
	if s.Penalty+s.Cost != 100 {
		return &ConfigurationError{Field: "split", Reason: fmt.Sprintf("weights sum to %d, want 100", s.Penalty+s.Cost)}
	}
	return nil
}
