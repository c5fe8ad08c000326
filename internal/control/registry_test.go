package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeRegistryFile writes YAML content to a temp file and returns its path.
func writeRegistryFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing registry file: %v", err)
	}
	return path
}

// TestLoadRegistry verifies YAML loading and validation.
func TestLoadRegistry(t *testing.T) {
	t.Run("loads outputs and inputs", func(t *testing.T) {
		path := writeRegistryFile(t, `
outputs:
  - name: output01
    kind: boolean
    description: Workshop relay
    default: false
    use_powerup: true
    hardware:
      line: 24
  - name: brightness
    kind: integer
    default: 50
  - name: banner
    kind: text
    default: "hello"
inputs:
  - name: input01
    description: Door contact
    line: 23
    pull_up: true
`)

		reg, err := LoadRegistry(path)
		if err != nil {
			t.Fatalf("LoadRegistry() error = %v", err)
		}

		if reg.Len() != 3 {
			t.Errorf("Len() = %d, want 3", reg.Len())
		}

		def, ok := reg.Lookup("output01")
		if !ok {
			t.Fatal("output01 not found")
		}
		if def.Kind != KindBoolean {
			t.Errorf("Kind = %v, want boolean", def.Kind)
		}
		if !def.UsePowerUp {
			t.Error("UsePowerUp = false, want true")
		}
		if def.Hardware == nil || def.Hardware.Line != 24 {
			t.Errorf("Hardware = %+v, want line 24", def.Hardware)
		}

		def, _ = reg.Lookup("brightness")
		if !def.Default.Equal(IntValue(50)) {
			t.Errorf("brightness default = %v, want 50", def.Default)
		}

		inputs := reg.Inputs()
		if len(inputs) != 1 || inputs[0].Line != 23 || !inputs[0].PullUp {
			t.Errorf("Inputs() = %+v, want input01 on line 23 with pull-up", inputs)
		}
	})

	t.Run("empty registry is an error", func(t *testing.T) {
		path := writeRegistryFile(t, "outputs: []\n")

		if _, err := LoadRegistry(path); !errors.Is(err, ErrEmptyRegistry) {
			t.Errorf("LoadRegistry() error = %v, want ErrEmptyRegistry", err)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("LoadRegistry() error = nil, want error")
		}
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		path := writeRegistryFile(t, `
outputs:
  - name: output01
    kind: boolean
  - name: output01
    kind: text
`)

		if _, err := LoadRegistry(path); !errors.Is(err, ErrDuplicateOutput) {
			t.Errorf("LoadRegistry() error = %v, want ErrDuplicateOutput", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		path := writeRegistryFile(t, `
outputs:
  - name: output01
    kind: float
`)

		if _, err := LoadRegistry(path); !errors.Is(err, ErrInvalidDefinition) {
			t.Errorf("LoadRegistry() error = %v, want ErrInvalidDefinition", err)
		}
	})

	t.Run("hardware on non-boolean rejected", func(t *testing.T) {
		path := writeRegistryFile(t, `
outputs:
  - name: count
    kind: integer
    hardware:
      line: 5
`)

		if _, err := LoadRegistry(path); !errors.Is(err, ErrInvalidDefinition) {
			t.Errorf("LoadRegistry() error = %v, want ErrInvalidDefinition", err)
		}
	})

	t.Run("uncoercible default rejected", func(t *testing.T) {
		path := writeRegistryFile(t, `
outputs:
  - name: count
    kind: integer
    default: banana
`)

		if _, err := LoadRegistry(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("LoadRegistry() error = %v, want ErrInvalidValue", err)
		}
	})
}

// TestRegistryOrdering verifies display order: booleans, integers, text,
// alphabetical within each kind.
func TestRegistryOrdering(t *testing.T) {
	reg, err := NewRegistry([]Definition{
		{Name: "zeta", Kind: KindText, Default: TextValue("")},
		{Name: "beta", Kind: KindBoolean, Default: BoolValue(false)},
		{Name: "count", Kind: KindInteger, Default: IntValue(0)},
		{Name: "alpha", Kind: KindBoolean, Default: BoolValue(false)},
	}, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	var names []string
	for _, def := range reg.Outputs() {
		names = append(names, def.Name)
	}

	want := []string{"alpha", "beta", "count", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("Outputs() order = %v, want %v", names, want)
		}
	}
}
