package control

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HardwareRef points an output or input at a GPIO line.
type HardwareRef struct {
	// Line is the GPIO line offset on the configured chip.
	Line int `yaml:"line"`

	// ActiveLow inverts the electrical sense of the line.
	ActiveLow bool `yaml:"active_low"`
}

// Definition describes one configured output: its name, kind, default
// value, power-up policy and optional hardware backing. Definitions are
// loaded once at startup and never mutated.
type Definition struct {
	Name        string
	Kind        Kind
	Description string

	// Default seeds both the current value and the power-up default
	// when the store row is first created.
	Default Value

	// UsePowerUp selects the power-up default over the last persisted
	// value at process start.
	UsePowerUp bool

	// Hardware is nil for store-only outputs. Only boolean outputs may
	// reference a hardware line.
	Hardware *HardwareRef
}

// InputDefinition describes one watched hardware input line.
type InputDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Line        int    `yaml:"line"`
	PullUp      bool   `yaml:"pull_up"`
}

// Registry holds the full set of configured outputs and inputs.
// It is immutable after load; lookups are safe for concurrent use.
type Registry struct {
	outputs []Definition
	byName  map[string]int
	inputs  []InputDefinition
}

// rawDefinition is the YAML shape of an output entry. Defaults arrive
// untyped and are coerced against the declared kind during validation.
type rawDefinition struct {
	Name        string       `yaml:"name"`
	Kind        Kind         `yaml:"kind"`
	Description string       `yaml:"description"`
	Default     any          `yaml:"default"`
	UsePowerUp  bool         `yaml:"use_powerup"`
	Hardware    *HardwareRef `yaml:"hardware"`
}

type registryFile struct {
	Outputs []rawDefinition   `yaml:"outputs"`
	Inputs  []InputDefinition `yaml:"inputs"`
}

// LoadRegistry reads and validates the output registry from a YAML file.
// An empty or invalid registry is an error; callers must treat it as
// fatal rather than serve traffic with undefined output state.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing registry file: %w", err)
	}

	defs := make([]Definition, 0, len(file.Outputs))
	for _, raw := range file.Outputs {
		def, err := resolveDefinition(raw)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return NewRegistry(defs, file.Inputs)
}

// NewRegistry builds a registry from already-resolved definitions.
// Exposed for tests and for callers that assemble definitions in code.
func NewRegistry(defs []Definition, inputs []InputDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		outputs: make([]Definition, 0, len(defs)),
		byName:  make(map[string]int, len(defs)),
		inputs:  inputs,
	}

	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, err
		}
		if _, exists := r.byName[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOutput, def.Name)
		}
		r.byName[def.Name] = len(r.outputs)
		r.outputs = append(r.outputs, def)
	}

	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: input with empty name", ErrInvalidDefinition)
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOutput, in.Name)
		}
		seen[in.Name] = true
	}

	sortOutputs(r.outputs)
	for i, def := range r.outputs {
		r.byName[def.Name] = i
	}

	return r, nil
}

// Lookup returns the definition for an output name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.outputs[i], true
}

// Outputs returns all output definitions in display order:
// booleans, then integers, then text, alphabetical within each kind.
func (r *Registry) Outputs() []Definition {
	out := make([]Definition, len(r.outputs))
	copy(out, r.outputs)
	return out
}

// Inputs returns all watched input definitions.
func (r *Registry) Inputs() []InputDefinition {
	in := make([]InputDefinition, len(r.inputs))
	copy(in, r.inputs)
	return in
}

// Len returns the number of configured outputs.
func (r *Registry) Len() int {
	return len(r.outputs)
}

func resolveDefinition(raw rawDefinition) (Definition, error) {
	if !raw.Kind.Valid() {
		return Definition{}, fmt.Errorf("%w: output %q has unknown kind %q",
			ErrInvalidDefinition, raw.Name, raw.Kind)
	}

	def := Definition{
		Name:        raw.Name,
		Kind:        raw.Kind,
		Description: raw.Description,
		UsePowerUp:  raw.UsePowerUp,
		Hardware:    raw.Hardware,
	}

	if raw.Default == nil {
		def.Default = zeroValue(raw.Kind)
		return def, nil
	}

	v, err := Coerce(raw.Kind, raw.Default)
	if err != nil {
		return Definition{}, fmt.Errorf("output %q default: %w", raw.Name, err)
	}
	def.Default = v
	return def, nil
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: output with empty name", ErrInvalidDefinition)
	}
	if !def.Kind.Valid() {
		return fmt.Errorf("%w: output %q has unknown kind %q",
			ErrInvalidDefinition, def.Name, def.Kind)
	}
	if def.Default.Kind != def.Kind {
		return fmt.Errorf("%w: output %q default is %q, want %q",
			ErrInvalidDefinition, def.Name, def.Default.Kind, def.Kind)
	}
	if def.Hardware != nil && def.Kind != KindBoolean {
		return fmt.Errorf("%w: output %q is %s but references a hardware line",
			ErrInvalidDefinition, def.Name, def.Kind)
	}
	return nil
}

func zeroValue(kind Kind) Value {
	switch kind {
	case KindBoolean:
		return BoolValue(false)
	case KindInteger:
		return IntValue(0)
	case KindText:
		return TextValue("")
	}
	return Value{}
}

// kindOrder fixes the display ordering of output kinds.
var kindOrder = map[Kind]int{
	KindBoolean: 0,
	KindInteger: 1,
	KindText:    2,
}

func sortOutputs(defs []Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Kind != defs[j].Kind {
			return kindOrder[defs[i].Kind] < kindOrder[defs[j].Kind]
		}
		return defs[i].Name < defs[j].Name
	})
}
