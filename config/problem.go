package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/prodseq/core/model"
)

// LoadProblem loads a planning problem from a JSON or YAML file, applies
// defaults and validates it.
func LoadProblem(path string) (model.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Problem{}, err
	}
	defer f.Close()
	return DecodeProblem(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeProblem reads a problem from r in the given format ("yaml" or
// "json"), applies defaults and validates it.
func DecodeProblem(r io.Reader, format string) (model.Problem, error) {
	var p model.Problem
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("decode problem: %w", err)
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("decode problem: %w", err)
		}
	default:
		return p, fmt.Errorf("unsupported format: %s", format)
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
