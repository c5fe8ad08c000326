package control

import "errors"

// Domain errors for the control package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, control.ErrUnknownOutput) {
//	    // handle unknown output case
//	}
var (
	// ErrUnknownOutput is returned when an output name is not configured.
	ErrUnknownOutput = errors.New("control: unknown output")

	// ErrInvalidValue is returned when a raw value cannot be coerced to
	// the output's declared kind.
	ErrInvalidValue = errors.New("control: invalid value")

	// ErrEmptyRegistry is returned when the registry file defines no outputs.
	// An empty registry is a startup-fatal misconfiguration.
	ErrEmptyRegistry = errors.New("control: registry defines no outputs")

	// ErrDuplicateOutput is returned when two registry entries share a name.
	ErrDuplicateOutput = errors.New("control: duplicate output name")

	// ErrInvalidDefinition is returned when a registry entry fails validation.
	ErrInvalidDefinition = errors.New("control: invalid output definition")
)
