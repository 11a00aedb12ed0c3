// Package config loads the application configuration and planning problems.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/prodseq/core/metrics"
	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/runlog"
	"github.com/kilianp07/prodseq/core/sequencing"
	"github.com/kilianp07/prodseq/infra/logger"
	"github.com/kilianp07/prodseq/infra/monitoring"
	"github.com/kilianp07/prodseq/infra/mqtt"
)

// EnvPrefix marks environment overrides: K_SEQUENCING__STRATEGY=exact sets
// sequencing.strategy.
const EnvPrefix = "K_"

type Config struct {
	Logging    logger.Config     `json:"logging"`
	Sequencing sequencing.Config `json:"sequencing"`
	// Objectives lists the objectives to plan for; empty means all four.
	Objectives []string `json:"objectives"`
	// Workers bounds concurrent line solves; zero means GOMAXPROCS.
	Workers int               `json:"workers" validate:"gte=0"`
	Metrics metrics.Config    `json:"metrics"`
	RunLog  runlog.Config     `json:"runlog"`
	Sentry  monitoring.Config `json:"sentry"`
	MQTT    mqtt.Config       `json:"mqtt"`
	API     APIConfig         `json:"api"`
}

// APIConfig protects the HTTP endpoints served next to /metrics.
type APIConfig struct {
	// Token, when set, must be sent as "Authorization: Bearer <token>".
	Token string `json:"token"`
}

// Load reads the configuration at path, applies K_ environment overrides,
// then defaults and validation. An empty path loads the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// K_A__B becomes a.b; the provider then splits on ".".
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Sequencing.SetDefaults()
	c.RunLog.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints, the strategy name and the objective list.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &model.ConfigurationError{Field: "config", Reason: err.Error()}
	}
	if err := c.Sequencing.Validate(); err != nil {
		return err
	}
	if _, err := c.ObjectiveList(); err != nil {
		return err
	}
	return nil
}

// ObjectiveList parses Objectives. A nil result means every objective.
func (c *Config) ObjectiveList() ([]model.Objective, error) {
	return ParseObjectives(c.Objectives)
}

// ParseObjectives parses objective names; nil in, nil out.
func ParseObjectives(names []string) ([]model.Objective, error) {
	var out []model.Objective
	for _, name := range names {
		o, err := model.ParseObjective(name)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
