package control

import (
	"errors"
	"testing"
)

// TestCoerceBoolean locks in the lenient boolean policy: recognised
// true spellings coerce to true, everything else coerces to false, and
// no input is ever rejected.
func TestCoerceBoolean(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"native true", true, true},
		{"native false", false, false},
		{"lowercase string", "true", true},
		{"capitalised string", "True", true},
		{"uppercase string", "TRUE", false},
		{"false string", "false", false},
		{"arbitrary string", "banana", false},
		{"number", 1, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(KindBoolean, tt.raw)
			if err != nil {
				t.Fatalf("Coerce() error = %v, boolean coercion must never fail", err)
			}
			if v.Kind != KindBoolean {
				t.Fatalf("Kind = %v, want boolean", v.Kind)
			}
			if v.Bool != tt.want {
				t.Errorf("Coerce(%v) = %v, want %v", tt.raw, v.Bool, tt.want)
			}
		})
	}
}

// TestCoerceInteger verifies strict integer coercion.
func TestCoerceInteger(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    int64
		wantErr bool
	}{
		{"int", 42, 42, false},
		{"int64", int64(-7), -7, false},
		{"json number", float64(100), 100, false},
		{"numeric string", "250", 250, false},
		{"padded string", " 9 ", 9, false},
		{"fractional", 1.5, 0, true},
		{"word", "banana", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(KindInteger, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Fatalf("Coerce() error = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce() error = %v", err)
			}
			if v.Int != tt.want {
				t.Errorf("Coerce(%v) = %v, want %v", tt.raw, v.Int, tt.want)
			}
		})
	}
}

// TestCoerceText verifies text coercion accepts strings only.
func TestCoerceText(t *testing.T) {
	v, err := Coerce(KindText, "hello")
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	if v.Text != "hello" {
		t.Errorf("Text = %q, want %q", v.Text, "hello")
	}

	if _, err := Coerce(KindText, 42); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Coerce(42) error = %v, want ErrInvalidValue", err)
	}
}

// TestValueEqual verifies equality across kinds and payloads.
func TestValueEqual(t *testing.T) {
	if !BoolValue(true).Equal(BoolValue(true)) {
		t.Error("equal booleans reported unequal")
	}
	if BoolValue(true).Equal(BoolValue(false)) {
		t.Error("unequal booleans reported equal")
	}
	if IntValue(1).Equal(TextValue("1")) {
		t.Error("cross-kind values reported equal")
	}
}

// TestValueString verifies log rendering.
func TestValueString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{BoolValue(true), "true"},
		{IntValue(-3), "-3"},
		{TextValue("hi"), "hi"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
