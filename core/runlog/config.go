package runlog

import "fmt"

// Config selects the run log backend. An empty Backend disables the log.
type Config struct {
	Backend    string `json:"backend" validate:"omitempty,oneof=jsonl rotating sqlite"`
	Path       string `json:"path" validate:"required_with=Backend"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days" validate:"gte=0"`
}

// SetDefaults applies rotation defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "rotating" {
		if c.MaxSizeMB == 0 {
			c.MaxSizeMB = 10
		}
		if c.MaxBackups == 0 {
			c.MaxBackups = 5
		}
		if c.MaxAgeDays == 0 {
			c.MaxAgeDays = 30
		}
	}
}

// NewStore opens the store described by cfg.
func NewStore(cfg Config) (LogStore, error) {
	switch cfg.Backend {
	case "":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown run log backend %q", cfg.Backend)
	}
}
