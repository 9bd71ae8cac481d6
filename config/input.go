// Package config loads projection inputs from YAML files.
package config

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of an input file:
//
//	control:
//	  CURRENT: "4200.00"
//	  SET_ASIDE: "500"
//	  NOW: 2025-01-01
//	  GENERATE_MONTHS: 18
//	  BIWEEKLY_START: 2025-01-03
//	definitions:
//	  monthly:
//	    - name: Rent
//	      amount: -1850
//	      day_of_month: 1
//	  biweekly:
//	    - name: Paycheck
//	      amount: 2600
//	      day_offset: 0
//
// Definitions are keyed by kind; list order within a kind is the
// configured order.
type File struct {
	Control     map[string]string                    `yaml:"control"`
	Definitions map[string][]factory.DefinitionJSON `yaml:"definitions"`
}

// Input is a validated input file. It implements cashflow.Source.
type Input struct {
	ControlMap  map[string]string
	Parameters  cashflow.ControlParameters
	definitions []cashflow.Definition
}

// InputParser handles parsing of input files.
type InputParser struct {
	factory *factory.DefinitionFactory
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{factory: factory.NewDefinitionFactory()}
}

// LoadFromFile loads an input file.
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse parses YAML input.
func (ip *InputParser) Parse(data []byte) (*Input, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	input, err := ip.Validate(&file)
	if err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return input, nil
}

// Validate converts a decoded file into an Input. Kind keys in the file
// take precedence over any kind field inside a definition.
func (ip *InputParser) Validate(file *File) (*Input, error) {
	params, err := cashflow.ParseControl(file.Control)
	if err != nil {
		return nil, err
	}

	byKind := make(map[cashflow.Kind][]factory.DefinitionJSON, len(file.Definitions))
	keys := make([]string, 0, len(file.Definitions))
	for key := range file.Definitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		kind, err := cashflow.ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("definitions: %w", err)
		}
		byKind[kind] = append(byKind[kind], file.Definitions[key]...)
	}

	input := &Input{ControlMap: file.Control, Parameters: params}
	for _, kind := range cashflow.Kinds {
		for i, dj := range byKind[kind] {
			dj.Kind = kind.String()
			def, err := ip.factory.FromJSON(dj)
			if err != nil {
				return nil, fmt.Errorf("%s definition %d: %w", kind, i, err)
			}
			input.definitions = append(input.definitions, def)
		}
	}
	return input, nil
}

// Control returns the parsed control parameters.
func (in *Input) Control(_ context.Context) (cashflow.ControlParameters, error) {
	return in.Parameters, nil
}

// Definitions groups the file's definitions by kind.
func (in *Input) Definitions(_ context.Context) (map[cashflow.Kind][]cashflow.Definition, error) {
	grouped := make(map[cashflow.Kind][]cashflow.Definition)
	for _, def := range in.definitions {
		grouped[def.Kind] = append(grouped[def.Kind], def)
	}
	return grouped, nil
}

// List returns every definition, grouped by kind in catalog order.
func (in *Input) List() []cashflow.Definition {
	return append([]cashflow.Definition(nil), in.definitions...)
}
