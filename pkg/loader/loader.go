// Package loader reads flow definitions from YAML (or JSON) documents.
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// Definition is the document shape of a flow.
type Definition struct {
	Initial string    `mapstructure:"initial"`
	Order   []string  `mapstructure:"order"`
	Steps   []stepDef `mapstructure:"steps"`
}

// stepDef accepts "default" as an alias of "next" for questions, which reads better
// next to a routes table.
type stepDef struct {
	ID      string         `mapstructure:"id"`
	Kind    string         `mapstructure:"kind"`
	Prompt  string         `mapstructure:"prompt"`
	Options []string       `mapstructure:"options"`
	Routes  []domain.Route `mapstructure:"routes"`
	Next    string         `mapstructure:"next"`
	Default string         `mapstructure:"default"`
	Text    string         `mapstructure:"text"`
}

func (d stepDef) toStep() (domain.Step, error) {
	next := d.Next
	if d.Default != "" {
		if next != "" && next != d.Default {
			return domain.Step{}, fmt.Errorf("step %q: both next (%q) and default (%q) are set", d.ID, next, d.Default)
		}
		next = d.Default
	}
	return domain.Step{
		ID:      d.ID,
		Kind:    domain.Kind(d.Kind),
		Prompt:  d.Prompt,
		Options: d.Options,
		Routes:  d.Routes,
		Next:    next,
		Text:    d.Text,
	}, nil
}

// Parse decodes a YAML document into a registry.
// JSON is accepted as well, since it is a subset of YAML.
func Parse(data []byte) (*registry.Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition: %w", err)
	}
	return fromMap(raw)
}

// ParseJSON decodes a JSON document into a registry.
func ParseJSON(data []byte) (*registry.Registry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition: %w", err)
	}
	return fromMap(raw)
}

func fromMap(raw map[string]any) (*registry.Registry, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty flow definition")
	}

	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &def,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode flow definition: %w", err)
	}

	steps := make([]domain.Step, 0, len(def.Steps))
	for _, d := range def.Steps {
		s, err := d.toStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}

	order := def.Order
	if order == nil {
		for _, s := range steps {
			order = append(order, s.ID)
		}
	}

	return registry.New(def.Initial, order, steps...)
}

// Load reads a definition from fsys.
func Load(fsys fs.FS, name string) (*registry.Registry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", name, err)
	}
	return parseByExt(name, data)
}

// LoadFile reads a definition from disk. The extension picks the decoder:
// ".json" uses encoding/json, anything else YAML.
func LoadFile(path string) (*registry.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", path, err)
	}
	return parseByExt(path, data)
}

func parseByExt(name string, data []byte) (*registry.Registry, error) {
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		return ParseJSON(data)
	}
	return Parse(data)
}
