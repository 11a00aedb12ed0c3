package sequencing

import (
	"fmt"

	"github.com/kilianp07/prodseq/core/model"
)

// Config selects and tunes the strategy used for every solve.
type Config struct {
	// Strategy is auto or any registered strategy name.
	Strategy string `json:"strategy"`
	// Workers bounds parallelism inside search and auto; zero means GOMAXPROCS.
	Workers int `json:"workers" validate:"gte=0"`
	// Tuning holds raw settings per strategy name, e.g. tuning.exact.nodeBudget.
	Tuning map[string]map[string]any `json:"tuning"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = NameAuto
	}
}

// Validate checks the strategy name and tuning keys.
func (c Config) Validate() error {
	if c.Strategy != NameAuto && !registry.Has(c.Strategy) {
		return &model.ConfigurationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Strategy)}
	}
	for name := range c.Tuning {
		if !registry.Has(name) {
			return &model.ConfigurationError{Field: "tuning", Reason: fmt.Sprintf("unknown strategy %q", name)}
		}
	}
	if c.Workers < 0 {
		return &model.ConfigurationError{Field: "workers", Reason: "must be non-negative"}
	}
	return nil
}
