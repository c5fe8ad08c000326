package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the value type of an output.
type Kind string

// Supported output kinds.
const (
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindText    Kind = "text"
)

// Valid returns true if the kind is one of the supported output kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBoolean, KindInteger, KindText:
		return true
	}
	return false
}

// Value is a tagged variant holding one typed output value.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Bool bool
	Int  int64
	Text string
}

// BoolValue constructs a boolean Value.
func BoolValue(v bool) Value {
	return Value{Kind: KindBoolean, Bool: v}
}

// IntValue constructs an integer Value.
func IntValue(v int64) Value {
	return Value{Kind: KindInteger, Int: v}
}

// TextValue constructs a text Value.
func TextValue(v string) Value {
	return Value{Kind: KindText, Text: v}
}

// Interface returns the payload as a plain Go value for JSON encoding.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindInteger:
		return v.Int
	case KindText:
		return v.Text
	}
	return nil
}

// String renders the payload for logs and messages.
func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindText:
		return v.Text
	}
	return ""
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBoolean:
		return v.Bool == other.Bool
	case KindInteger:
		return v.Int == other.Int
	case KindText:
		return v.Text == other.Text
	}
	return false
}

// Coerce converts a raw caller-supplied value to the given kind.
//
// Boolean coercion is deliberately lenient: true, "true" and "True" coerce
// to true, and every other value coerces to false without error. Panel
// clients submit booleans as JSON bools, form strings and query parameters,
// and a boolean output must accept all of them. Integer and text coercion
// are strict and return ErrInvalidValue when the raw value is not
// representable.
func Coerce(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindBoolean:
		return BoolValue(coerceBool(raw)), nil
	case KindInteger:
		n, err := coerceInt(raw)
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case KindText:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: %T is not text", ErrInvalidValue, raw)
		}
		return TextValue(s), nil
	}
	return Value{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
}

// coerceBool implements the lenient boolean policy. Anything that is not
// recognisably true is false, never an error.
func coerceBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True"
	}
	return false
}

func coerceInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		// JSON numbers decode as float64. Reject fractional values.
		n := int64(v)
		if float64(n) != v {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidValue, v)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", ErrInvalidValue, raw)
}
